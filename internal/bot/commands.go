package bot

import (
	"github.com/bwmarrin/discordgo"

	"ordercsv/internal/model"
)

const (
	cmdAddCompany    = "add_company"
	cmdGetCSV        = "get_csv"
	cmdFetchMessages = "fetch_messages"
	cmdFetchHistory  = "fetch_history"

	optDelete    = "delete"
	optMessageID = "message_id"
)

// fieldOptions maps add_company option names to record fields, in column order.
var fieldOptions = []struct {
	name        string
	description string
	label       model.Label
}{
	{"ordernumber", "Order Number", model.OrderNumber},
	{"itemcode", "Item Code", model.ItemCode},
	{"name", "Name", model.Name},
	{"address", "Address", model.Address},
	{"phone", "Phone", model.Phone},
	{"price", "Price", model.Price},
	{"quantity", "Quantity", model.Quantity},
}

func commands() []*discordgo.ApplicationCommand {
	fields := make([]*discordgo.ApplicationCommandOption, 0, len(fieldOptions))
	for _, f := range fieldOptions {
		fields = append(fields, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        f.name,
			Description: f.description,
		})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdAddCompany,
			Description: "Add a company record to the csv",
			Options:     fields,
		},
		{
			Name:        cmdGetCSV,
			Description: "Send the csv built from add_company",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        optDelete,
					Description: "Delete CSV records after sending?",
					Required:    true,
				},
			},
		},
		{
			Name:        cmdFetchMessages,
			Description: "Parse orders from every message after the given one",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        optDelete,
					Description: "Delete CSV records after sending? If not deleted, the next fetch is appended.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optMessageID,
					Description: "What is the starting message? Paste the message ID",
					Required:    true,
				},
			},
		},
		{
			Name:        cmdFetchHistory,
			Description: "Show recent fetch_messages runs",
		},
	}
}

func fieldsFromOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) map[model.Label]string {
	fields := make(map[model.Label]string)
	for _, o := range opts {
		if o.Type != discordgo.ApplicationCommandOptionString {
			continue
		}
		for _, f := range fieldOptions {
			if f.name == o.Name {
				fields[f.label] = o.StringValue()
			}
		}
	}
	return fields
}

func stringOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range opts {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionString {
			return o.StringValue()
		}
	}
	return ""
}

func boolOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) bool {
	for _, o := range opts {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionBoolean {
			return o.BoolValue()
		}
	}
	return false
}
