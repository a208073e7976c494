// Package bot serves the order commands as Discord slash commands.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"ordercsv/internal/config"
	"ordercsv/internal/history"
	"ordercsv/internal/ingest"
	"ordercsv/internal/model"
	"ordercsv/internal/orders"
	"ordercsv/internal/storage"
)

type discordAPI interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// Bot is the Discord front end for the order commands.
type Bot struct {
	session *discordgo.Session
	api     discordAPI
	svc     *orders.Service
	cfg     *config.Config
	log     *slog.Logger
}

// New creates a Bot with the given Discord token, journal storage, and config.
func New(token string, store storage.Storage, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent

	b := newBot(session, store, cfg, log)
	b.session = session
	return b, nil
}

func newBot(api discordAPI, store storage.Storage, cfg *config.Config, log *slog.Logger) *Bot {
	pages := history.New(channelSource{api: api}, cfg.PageDelay, log)
	pipeline := ingest.New(cfg.CSVDir, pages, store, log)
	return &Bot{
		api: api,
		svc: orders.New(cfg.CSVDir, pipeline, store, log),
		cfg: cfg,
		log: log,
	}
}

// Run connects to the gateway, registers the slash commands and serves
// interactions until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	remove := b.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handleInteraction(ctx, i)
	})
	defer remove()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	defer func() { _ = b.session.Close() }()

	appID := b.session.State.User.ID
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, "", commands(), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	b.log.Info("discord bot ready", "user", b.session.State.User.Username, "commands", len(commands()))

	<-ctx.Done()
	return nil
}

type channelSource struct {
	api discordAPI
}

func (c channelSource) MessagesAfter(ctx context.Context, channelID, afterID string, limit int) ([]model.Message, error) {
	msgs, err := c.api.ChannelMessages(channelID, limit, "", afterID, "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, model.Message{ID: m.ID, Content: m.Content})
	}
	return out, nil
}
