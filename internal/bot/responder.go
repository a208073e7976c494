package bot

import (
	"context"
	"fmt"
	"io"

	"github.com/bwmarrin/discordgo"
)

// responder answers one interaction. The first output becomes the
// interaction response and every later one a follow-up message.
type responder struct {
	api       discordAPI
	i         *discordgo.Interaction
	responded bool
}

func newResponder(api discordAPI, i *discordgo.Interaction) *responder {
	return &responder{api: api, i: i}
}

func (r *responder) Reply(ctx context.Context, text string) error {
	return r.send(ctx, &discordgo.InteractionResponseData{Content: text})
}

func (r *responder) Embed(ctx context.Context, title, description string) error {
	return r.send(ctx, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{Title: title, Description: description}},
	})
}

func (r *responder) Attach(ctx context.Context, name string, rd io.Reader) error {
	return r.send(ctx, &discordgo.InteractionResponseData{
		Files: []*discordgo.File{{Name: name, ContentType: "text/csv", Reader: rd}},
	})
}

func (r *responder) send(ctx context.Context, data *discordgo.InteractionResponseData) error {
	opt := discordgo.WithContext(ctx)

	if !r.responded {
		err := r.api.InteractionRespond(r.i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: data,
		}, opt)
		if err != nil {
			return fmt.Errorf("respond to interaction: %w", err)
		}
		r.responded = true
		return nil
	}

	_, err := r.api.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{
		Content: data.Content,
		Embeds:  data.Embeds,
		Files:   data.Files,
	}, opt)
	if err != nil {
		return fmt.Errorf("send follow-up: %w", err)
	}
	return nil
}
