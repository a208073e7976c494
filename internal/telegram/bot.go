// Package telegram serves the order commands over the Telegram Bot API.
//
// The Bot API cannot read chat history, so fetch_messages is refused here;
// fetch_history still lists the journal for the chat.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ordercsv/internal/config"
	"ordercsv/internal/ingest"
	"ordercsv/internal/orders"
	"ordercsv/internal/storage"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot is the Telegram front end for the order commands.
type Bot struct {
	api telegramAPI
	svc *orders.Service
	cfg *config.Config
	log *slog.Logger
}

// New creates a Bot with the given Telegram token, journal storage, and config.
func New(token string, store storage.Storage, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return newBot(api, store, cfg, log), nil
}

func newBot(api telegramAPI, store storage.Storage, cfg *config.Config, log *slog.Logger) *Bot {
	return &Bot{
		api: api,
		svc: orders.New(cfg.CSVDir, nil, store, log),
		cfg: cfg,
		log: log,
	}
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() || update.Message.From == nil {
				continue
			}
			if !b.cfg.IsUserAllowed(update.Message.From.ID) {
				b.reply(update.Message.Chat.ID, "Access denied.")
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string) {
	if err := b.SendMessage(chatID, text); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID
	scope := strconv.FormatInt(chatID, 10)
	out := &chatResponder{b: b, chatID: chatID}

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	var err error
	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "add_company":
		fields, perr := ParseAddArgs(args)
		if perr != nil {
			err = perr
			break
		}
		err = b.svc.AddCompany(ctx, scope, fields, out)
	case "get_csv":
		del, perr := ParseDeleteArg(args)
		if perr != nil {
			err = perr
			break
		}
		err = b.svc.GetCSV(ctx, scope, del, out)
	case "fetch_messages":
		err = b.svc.FetchMessages(ctx, ingest.Request{Scope: scope}, out)
	case "fetch_history":
		err = b.svc.FetchHistory(ctx, scope, out)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}

	if err != nil {
		b.log.Error("command failed", "cmd", cmd, "chat_id", chatID, "error", err)
		b.reply(chatID, err.Error())
	}
}

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to the order bot!

Send orders with /add_company and collect them as a CSV with /get_csv.

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `/add_company <order text> - record one order, e.g.
  /add_company Order Number: 12354, Name: Azwad, Quantity: 2
  Recognised labels: order number, item code, name, address, phone, price, quantity
/get_csv [delete] - send the CSV, optionally deleting it afterwards
/fetch_history - list recent message fetches for this chat

Fetching message history is only available on Discord.`)
}

// chatResponder renders command output as Telegram messages.
type chatResponder struct {
	b      *Bot
	chatID int64
}

func (r *chatResponder) Reply(_ context.Context, text string) error {
	return r.b.SendMessage(r.chatID, text)
}

func (r *chatResponder) Embed(_ context.Context, title, description string) error {
	return r.b.SendMessage(r.chatID, title+"\n\n"+description)
}

func (r *chatResponder) Attach(_ context.Context, name string, rd io.Reader) error {
	doc := tgbotapi.NewDocument(r.chatID, tgbotapi.FileReader{Name: name, Reader: rd})
	if _, err := r.b.api.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}
