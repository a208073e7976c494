// Package sink writes order records to per-scope, append-only CSV files.
package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ordercsv/internal/model"
)

// Kind selects which CSV file family a sink writes to.
type Kind string

// Supported file kinds.
const (
	KindCommands Kind = "slashcommands"
	KindFetch    Kind = "fetch"
)

// ErrInvalidScope is returned for scope ids that cannot name a file.
var ErrInvalidScope = errors.New("invalid scope id")

// Attacher uploads a file to the invoking chat.
type Attacher interface {
	Attach(ctx context.Context, name string, r io.Reader) error
}

// Path returns the CSV path for kind and scope inside dir.
func Path(dir string, kind Kind, scope string) (string, error) {
	if scope == "" || strings.ContainsAny(scope, `/\`) || strings.Contains(scope, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.csv", kind, scope)), nil
}

// Sink appends records to one CSV file.
type Sink struct {
	path string
	f    *os.File
	w    *csv.Writer
}

// Open opens the CSV file for kind and scope in append-create mode.
func Open(dir string, kind Kind, scope string) (*Sink, error) {
	path, err := Path(dir, kind, scope)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // path built from a validated scope id
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	return &Sink{path: path, f: f, w: csv.NewWriter(f)}, nil
}

// Path returns the file the sink writes to.
func (s *Sink) Path() string {
	return s.path
}

// Write buffers one record as a CSV row.
func (s *Sink) Write(rec model.Record) error {
	if err := s.w.Write(rec.Fields()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Flush writes buffered rows to the file.
func (s *Sink) Flush() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (s *Sink) Close() error {
	flushErr := s.Flush()
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	return flushErr
}

// Send reopens the file at path for reading and hands it to a.
func Send(ctx context.Context, path string, a Attacher) error {
	f, err := os.Open(path) //nolint:gosec // path built from a validated scope id
	if err != nil {
		return fmt.Errorf("no csv available or could not open it: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := a.Attach(ctx, filepath.Base(path), f); err != nil {
		return fmt.Errorf("attach csv: %w", err)
	}
	return nil
}
