// Package model defines the domain types used across the application.
package model

import "time"

// Label identifies one of the order fields recognised in message text.
type Label int

// Supported labels, in CSV column order.
const (
	OrderNumber Label = iota
	ItemCode
	Name
	Address
	Phone
	Price
	Quantity
)

// LabelCount is the number of fields in a Record.
const LabelCount = 7

var labelText = [LabelCount]string{
	OrderNumber: "order number",
	ItemCode:    "item code",
	Name:        "name",
	Address:     "address",
	Phone:       "phone",
	Price:       "price",
	Quantity:    "quantity",
}

// Labels lists every label in column order.
var Labels = [LabelCount]Label{OrderNumber, ItemCode, Name, Address, Phone, Price, Quantity}

// Text returns the canonical lowercase label text.
func (l Label) Text() string {
	if l < 0 || int(l) >= LabelCount {
		return ""
	}
	return labelText[l]
}

// Len returns the byte length of the canonical label text.
func (l Label) Len() int {
	return len(l.Text())
}

func (l Label) String() string {
	return l.Text()
}

// LabelFromText maps canonical label text back to its Label.
func LabelFromText(s string) (Label, bool) {
	for _, l := range Labels {
		if labelText[l] == s {
			return l, true
		}
	}
	return 0, false
}

// Hit is a label located in a sanitized message body.
type Hit struct {
	Label Label
	Start int
	End   int
}

// Record holds one order. Fields are indexed by Label.
type Record [LabelCount]string

// Get returns the value stored for l.
func (r Record) Get(l Label) string {
	return r[l]
}

// Set stores v for l.
func (r *Record) Set(l Label, v string) {
	r[l] = v
}

// Fields returns the record as a CSV row in column order.
func (r Record) Fields() []string {
	out := make([]string, LabelCount)
	copy(out, r[:])
	return out
}

// Message is a chat message as returned by a history source.
type Message struct {
	ID      string
	Content string
}

// RunStatus is the lifecycle state of an ingestion run.
type RunStatus string

// Supported run states.
const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is a journal entry for one history ingestion.
type Run struct {
	ID              string
	Scope           string
	ChannelID       string
	AnchorID        string
	Status          RunStatus
	MessagesFetched int
	RecordsWritten  int
	Error           string
	StartedAt       time.Time
	FinishedAt      *time.Time
}
