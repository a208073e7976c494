package parser

import (
	"strings"

	"ordercsv/internal/model"
)

// Assemble folds sorted hits over a sanitized body into a Record.
func Assemble(body string, hits []model.Hit) model.Record {
	var rec model.Record
	for i, h := range hits {
		next := len(body)
		if i+1 < len(hits) {
			next = hits[i+1].Start
		}
		if h.Start < 0 || h.Start > next || next > len(body) {
			continue
		}

		segment := body[h.Start:next]
		split := h.End - h.Start
		if split > len(segment) {
			split = len(segment)
		}
		label := trimField(segment[:split])
		value := trimField(segment[split:])

		l, ok := model.LabelFromText(strings.ToLower(label))
		if !ok {
			continue
		}
		rec.Set(l, value)
	}
	return rec
}

// Parse scans body and assembles a Record. It reports false when no label
// was found.
func Parse(body string) (model.Record, bool) {
	sanitized, hits := Scan(body)
	if len(hits) == 0 {
		return model.Record{}, false
	}
	return Assemble(sanitized, hits), true
}

func trimField(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ",")
}
