// Package parser extracts order records from free-form message text.
//
// A message is sanitized by dropping every ':' and then searched for the
// first occurrence of each known label. Values run from the end of a label
// to the start of the next located label, or to the end of the body.
package parser

import (
	"sort"
	"strings"

	"ordercsv/internal/model"
)

// Sanitize removes label separators from a raw message body.
func Sanitize(body string) string {
	return strings.ReplaceAll(body, ":", "")
}

// Scan sanitizes body and returns it together with the located labels,
// sorted by start offset. Only the first occurrence of each label counts.
func Scan(body string) (string, []model.Hit) {
	sanitized := Sanitize(body)
	folded := foldASCII(sanitized)

	var hits []model.Hit
	for _, l := range model.Labels {
		idx := strings.Index(folded, l.Text())
		if idx < 0 {
			continue
		}
		hits = append(hits, model.Hit{Label: l, Start: idx, End: idx + l.Len()})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Start < hits[j].Start
	})
	return sanitized, hits
}

// foldASCII lowercases ASCII letters only, so byte offsets in the result
// line up with the input.
func foldASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
