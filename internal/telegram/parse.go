package telegram

import (
	"fmt"
	"strings"

	"ordercsv/internal/model"
	"ordercsv/internal/orders"
	"ordercsv/internal/parser"
)

// ParseAddArgs extracts labelled fields from /add_company arguments.
// Only labels present in the text are returned.
func ParseAddArgs(args string) (map[model.Label]string, error) {
	sanitized, hits := parser.Scan(args)
	if len(hits) == 0 {
		return nil, orders.ErrNoData
	}
	rec := parser.Assemble(sanitized, hits)

	fields := make(map[model.Label]string, len(hits))
	for _, h := range hits {
		fields[h.Label] = rec.Get(h.Label)
	}
	return fields, nil
}

// ParseDeleteArg interprets the optional argument of /get_csv.
func ParseDeleteArg(args string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "", "keep", "false", "no":
		return false, nil
	case "delete", "true", "yes":
		return true, nil
	default:
		return false, fmt.Errorf("usage: /get_csv [delete]")
	}
}
