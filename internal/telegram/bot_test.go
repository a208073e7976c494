package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"ordercsv/internal/config"
	"ordercsv/internal/model"
	"ordercsv/internal/orders"
	"ordercsv/internal/storage"
)

// --- mocks ---

type mockAPI struct {
	mu    sync.Mutex
	texts []string
	docs  map[string]string
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		m.texts = append(m.texts, v.Text)
	case tgbotapi.DocumentConfig:
		fr, ok := v.File.(tgbotapi.FileReader)
		if !ok {
			return tgbotapi.Message{}, errors.New("unexpected file type")
		}
		data, err := io.ReadAll(fr.Reader)
		if err != nil {
			return tgbotapi.Message{}, err
		}
		if m.docs == nil {
			m.docs = make(map[string]string)
		}
		m.docs[fr.Name] = string(data)
	}
	return tgbotapi.Message{}, nil
}

func (m *mockAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(tgbotapi.UpdatesChannel)
}

func (m *mockAPI) StopReceivingUpdates() {}

func (m *mockAPI) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}

func (m *mockAPI) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = nil
	m.docs = nil
}

// --- helpers ---

func newTestBot(t *testing.T) (*Bot, *mockAPI) {
	t.Helper()
	b, api, _ := newTestBotWithStore(t)
	return b, api
}

func newTestBotWithStore(t *testing.T) (*Bot, *mockAPI, *storage.SQLite) {
	t.Helper()
	store, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	api := &mockAPI{}
	cfg := &config.Config{CSVDir: t.TempDir()}
	return newBot(api, store, cfg, slog.New(slog.NewTextHandler(io.Discard, nil))), api, store
}

func makeMsg(cmd, args string) *tgbotapi.Message {
	text := "/" + cmd
	if args != "" {
		text += " " + args
	}
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 100},
		From: &tgbotapi.User{ID: 1},
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len("/" + cmd)},
		},
	}
}

func requireContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("reply missing %q, got:\n%s", want, got)
	}
}

// --- handler tests ---

func TestHandleCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("dispatches known commands", func(t *testing.T) {
		b, api := newTestBot(t)

		cmds := []struct {
			cmd      string
			contains string
		}{
			{"start", "Welcome"},
			{"help", "/add_company"},
			{"fetch_messages", "not available"},
			{"fetch_history", "No fetches recorded yet"},
			{"unknown_cmd", "Unknown command"},
		}

		for _, tc := range cmds {
			api.reset()
			b.handleCommand(ctx, makeMsg(tc.cmd, ""))
			requireContains(t, api.lastText(), tc.contains)
		}
	})
}

func TestAddCompany(t *testing.T) {
	ctx := context.Background()

	t.Run("records fields", func(t *testing.T) {
		b, api := newTestBot(t)
		b.handleCommand(ctx, makeMsg("add_company", "Order Number: 12354, Name: Azwad, Quantity: 2"))

		requireContains(t, api.lastText(), "Created a new record!")
		requireContains(t, api.lastText(), "name: Azwad")

		data, err := os.ReadFile(filepath.Join(b.cfg.CSVDir, "slashcommands-100.csv"))
		if err != nil {
			t.Fatalf("read csv: %v", err)
		}
		if diff := cmp.Diff("12354,,Azwad,,,,2\n", string(data)); diff != "" {
			t.Errorf("csv mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no labels", func(t *testing.T) {
		b, api := newTestBot(t)
		b.handleCommand(ctx, makeMsg("add_company", "hello world"))

		if diff := cmp.Diff("no data to record", api.lastText()); diff != "" {
			t.Errorf("reply mismatch (-want +got):\n%s", diff)
		}
		if _, err := os.Stat(filepath.Join(b.cfg.CSVDir, "slashcommands-100.csv")); !os.IsNotExist(err) {
			t.Errorf("expected no csv, stat err = %v", err)
		}
	})
}

func TestGetCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		b, api := newTestBot(t)
		b.handleCommand(ctx, makeMsg("get_csv", ""))
		requireContains(t, api.lastText(), "no csv available")
	})

	t.Run("bad argument", func(t *testing.T) {
		b, api := newTestBot(t)
		b.handleCommand(ctx, makeMsg("get_csv", "maybe"))
		requireContains(t, api.lastText(), "usage: /get_csv")
	})

	t.Run("send and keep", func(t *testing.T) {
		b, api := newTestBot(t)
		b.handleCommand(ctx, makeMsg("add_company", "Price: 10"))
		b.handleCommand(ctx, makeMsg("get_csv", ""))

		if diff := cmp.Diff(map[string]string{"slashcommands-100.csv": ",,,,,10,\n"}, api.docs); diff != "" {
			t.Errorf("documents mismatch (-want +got):\n%s", diff)
		}
		if _, err := os.Stat(filepath.Join(b.cfg.CSVDir, "slashcommands-100.csv")); err != nil {
			t.Errorf("expected csv kept: %v", err)
		}
	})

	t.Run("send and delete", func(t *testing.T) {
		b, api := newTestBot(t)
		b.handleCommand(ctx, makeMsg("add_company", "Phone: 555"))
		b.handleCommand(ctx, makeMsg("get_csv", "delete"))

		if diff := cmp.Diff(map[string]string{"slashcommands-100.csv": ",,,,555,,\n"}, api.docs); diff != "" {
			t.Errorf("documents mismatch (-want +got):\n%s", diff)
		}
		if _, err := os.Stat(filepath.Join(b.cfg.CSVDir, "slashcommands-100.csv")); !os.IsNotExist(err) {
			t.Errorf("expected csv removed, stat err = %v", err)
		}
	})
}

func TestFetchHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("lists runs for the chat", func(t *testing.T) {
		b, api, store := newTestBotWithStore(t)

		run := &model.Run{Scope: "100", ChannelID: "c1", AnchorID: "1187713497478615132"}
		if err := store.CreateRun(ctx, run); err != nil {
			t.Fatalf("create run: %v", err)
		}
		run.Status = model.RunCompleted
		run.MessagesFetched = 12
		run.RecordsWritten = 3
		if err := store.FinishRun(ctx, run); err != nil {
			t.Fatalf("finish run: %v", err)
		}
		other := &model.Run{Scope: "200", AnchorID: "1"}
		if err := store.CreateRun(ctx, other); err != nil {
			t.Fatalf("create run: %v", err)
		}

		b.handleCommand(ctx, makeMsg("fetch_history", ""))

		got := api.lastText()
		requireContains(t, got, "from message 1187713497478615132 [completed]")
		requireContains(t, got, "12 messages, 3 records")
		if strings.Contains(got, "from message 1 ") {
			t.Errorf("listing leaked another chat's run:\n%s", got)
		}
	})

	t.Run("without journal", func(t *testing.T) {
		api := &mockAPI{}
		b := newBot(api, nil, &config.Config{CSVDir: t.TempDir()}, slog.New(slog.NewTextHandler(io.Discard, nil)))
		b.handleCommand(ctx, makeMsg("fetch_history", ""))
		requireContains(t, api.lastText(), "not available")
	})
}

func TestRunAccessDenied(t *testing.T) {
	api := &deliveringAPI{updates: make(chan tgbotapi.Update, 1)}
	cfg := &config.Config{CSVDir: t.TempDir(), AllowedUsers: []int64{7}}
	b := newBot(api, nil, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	api.updates <- tgbotapi.Update{Message: makeMsg("get_csv", "")}

	ctx, cancel := context.WithCancel(context.Background())
	api.onSend = cancel
	b.Run(ctx)

	if diff := cmp.Diff([]string{"Access denied."}, api.texts); diff != "" {
		t.Errorf("replies mismatch (-want +got):\n%s", diff)
	}
}

// deliveringAPI feeds queued updates to Run and cancels it on first send.
type deliveringAPI struct {
	mockAPI
	updates chan tgbotapi.Update
	onSend  func()
}

func (d *deliveringAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, err := d.mockAPI.Send(c)
	d.onSend()
	return msg, err
}

func (d *deliveringAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return d.updates
}

// --- parse tests ---

func TestParseAddArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    map[model.Label]string
		wantErr error
	}{
		{
			name: "labelled fields",
			args: "Order Number: 12354, Name: Azwad, Quantity: 2",
			want: map[model.Label]string{
				model.OrderNumber: "12354",
				model.Name:        "Azwad",
				model.Quantity:    "2",
			},
		},
		{
			name: "empty value kept",
			args: "price: 10, quantity:",
			want: map[model.Label]string{
				model.Price:    "10",
				model.Quantity: "",
			},
		},
		{
			name:    "no labels",
			args:    "hello world",
			wantErr: orders.ErrNoData,
		},
		{
			name:    "empty",
			args:    "",
			wantErr: orders.ErrNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddArgs(tt.args)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseAddArgs() error = %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseAddArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDeleteArg(t *testing.T) {
	tests := []struct {
		args    string
		want    bool
		wantErr bool
	}{
		{"", false, false},
		{"keep", false, false},
		{"no", false, false},
		{"delete", true, false},
		{" DELETE ", true, false},
		{"yes", true, false},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			got, err := ParseDeleteArg(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDeleteArg(%q) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDeleteArg(%q) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}
