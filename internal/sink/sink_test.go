package sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ordercsv/internal/model"
)

type captureAttacher struct {
	name string
	data []byte
	err  error
}

func (c *captureAttacher) Attach(_ context.Context, name string, r io.Reader) error {
	if c.err != nil {
		return c.err
	}
	c.name = name
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	c.data = buf.Bytes()
	return nil
}

func TestPath(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		scope   string
		want    string
		wantErr bool
	}{
		{name: "commands", kind: KindCommands, scope: "123", want: filepath.Join("data", "slashcommands-123.csv")},
		{name: "fetch", kind: KindFetch, scope: "456", want: filepath.Join("data", "fetch-456.csv")},
		{name: "empty scope", kind: KindFetch, scope: "", wantErr: true},
		{name: "slash", kind: KindFetch, scope: "a/b", wantErr: true},
		{name: "backslash", kind: KindFetch, scope: `a\b`, wantErr: true},
		{name: "dot dot", kind: KindFetch, scope: "..", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Path("data", tt.kind, tt.scope)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidScope) {
					t.Fatalf("expected ErrInvalidScope, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Path() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSinkAppends(t *testing.T) {
	dir := t.TempDir()

	write := func(recs ...model.Record) {
		t.Helper()
		s, err := Open(dir, KindFetch, "42")
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		for _, r := range recs {
			if err := s.Write(r); err != nil {
				t.Fatalf("write: %v", err)
			}
		}
		if err := s.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	write(model.Record{"1", "2", "Azwad", "Alexandria, Egypt", "000", "620", "2"})
	write(model.Record{"", "", "Say \"hi\"", "", "", "", ""})

	data, err := os.ReadFile(filepath.Join(dir, "fetch-42.csv"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "1,2,Azwad,\"Alexandria, Egypt\",000,620,2\n" +
		",,\"Say \"\"hi\"\"\",,,,\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenFailure(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"), KindCommands, "1")
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestSend(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		err := Send(ctx, filepath.Join(t.TempDir(), "nope.csv"), &captureAttacher{})
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("attaches contents", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fetch-7.csv")
		if err := os.WriteFile(path, []byte("a,b\n"), 0o600); err != nil {
			t.Fatalf("seed: %v", err)
		}
		a := &captureAttacher{}
		if err := Send(ctx, path, a); err != nil {
			t.Fatalf("send: %v", err)
		}
		if diff := cmp.Diff("fetch-7.csv", a.name); diff != "" {
			t.Errorf("name mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff("a,b\n", string(a.data)); diff != "" {
			t.Errorf("data mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("attacher error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fetch-8.csv")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if err := Send(ctx, path, &captureAttacher{err: io.ErrClosedPipe}); !errors.Is(err, io.ErrClosedPipe) {
			t.Fatalf("expected wrapped ErrClosedPipe, got %v", err)
		}
	})
}
