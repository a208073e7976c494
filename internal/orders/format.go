package orders

import (
	"fmt"
	"strings"

	"ordercsv/internal/model"
)

// recordKeys are the keys FormatRecord prints, in column order.
var recordKeys = [model.LabelCount]string{
	model.OrderNumber: "ordernumber",
	model.ItemCode:    "item code",
	model.Name:        "name",
	model.Address:     "address",
	model.Phone:       "phone",
	model.Price:       "price",
	model.Quantity:    "quantity",
}

// FormatRecord renders a record as one "key: value" line per field.
func FormatRecord(rec model.Record) string {
	var b strings.Builder
	for i, l := range model.Labels {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s", recordKeys[l], rec.Get(l))
	}
	return b.String()
}

// FormatRuns renders ingestion runs, newest first.
func FormatRuns(runs []model.Run) string {
	if len(runs) == 0 {
		return "No fetches recorded yet. Use fetch_messages to start one."
	}
	var b strings.Builder
	b.WriteString("Recent fetches:\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "\n%s  from message %s [%s]\n", r.StartedAt.Format("2006-01-02 15:04 UTC"), r.AnchorID, r.Status)
		switch r.Status {
		case model.RunFailed:
			fmt.Fprintf(&b, "   error: %s\n", r.Error)
		case model.RunCompleted:
			fmt.Fprintf(&b, "   %d messages, %d records\n", r.MessagesFetched, r.RecordsWritten)
		}
	}
	return b.String()
}

// FormatRun renders every stored detail of one run.
func FormatRun(r model.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s [%s]\n", r.ID, r.Status)
	fmt.Fprintf(&b, "scope: %s\nchannel: %s\nfrom message: %s\n", r.Scope, r.ChannelID, r.AnchorID)
	fmt.Fprintf(&b, "started: %s\n", r.StartedAt.Format("2006-01-02 15:04:05 UTC"))
	if r.FinishedAt != nil {
		fmt.Fprintf(&b, "finished: %s\n", r.FinishedAt.Format("2006-01-02 15:04:05 UTC"))
	}
	fmt.Fprintf(&b, "messages: %d\nrecords: %d", r.MessagesFetched, r.RecordsWritten)
	if r.Error != "" {
		fmt.Fprintf(&b, "\nerror: %s", r.Error)
	}
	return b.String()
}
