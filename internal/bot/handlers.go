package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"ordercsv/internal/ingest"
)

func (b *Bot) handleInteraction(ctx context.Context, ic *discordgo.InteractionCreate) {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return
	}
	i := ic.Interaction
	data := i.ApplicationCommandData()
	userID := interactionUserID(i)
	scope := scopeID(i)
	out := newResponder(b.api, i)

	if !b.cfg.IsUserIDAllowed(userID) {
		b.reply(ctx, out, "Access denied.")
		return
	}

	b.log.Debug("command", "cmd", data.Name, "scope", scope, "channel_id", i.ChannelID, "user_id", userID)

	var err error
	switch data.Name {
	case cmdAddCompany:
		err = b.svc.AddCompany(ctx, scope, fieldsFromOptions(data.Options), out)
	case cmdGetCSV:
		err = b.svc.GetCSV(ctx, scope, boolOption(data.Options, optDelete), out)
	case cmdFetchMessages:
		err = b.svc.FetchMessages(ctx, ingest.Request{
			Scope:     scope,
			ChannelID: i.ChannelID,
			AnchorID:  stringOption(data.Options, optMessageID),
			Delete:    boolOption(data.Options, optDelete),
		}, out)
	case cmdFetchHistory:
		err = b.svc.FetchHistory(ctx, scope, out)
	default:
		err = fmt.Errorf("unknown command %q", data.Name)
	}

	if err != nil {
		b.log.Error("command failed", "cmd", data.Name, "scope", scope, "error", err)
		b.reply(ctx, out, err.Error())
	}
}

func (b *Bot) reply(ctx context.Context, out *responder, text string) {
	if err := out.Reply(ctx, text); err != nil {
		b.log.Error("send message", "error", err)
	}
}

func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// scopeID partitions CSV files by guild, or by user outside a guild.
func scopeID(i *discordgo.Interaction) string {
	if i.GuildID != "" {
		return i.GuildID
	}
	return interactionUserID(i)
}
