package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RawMatchSet maps the label text found in a document to the amount string
// printed next to it, before any parsing.
type RawMatchSet map[string]string

// ScanFields finds every "<label> : <amount>" pair of the schema in text.
// A label that appears more than once keeps its last amount. Text without
// any known label yields an empty set.
func ScanFields(text string, schema FieldSchema) RawMatchSet {
	matches := RawMatchSet{}
	if schema.pattern == nil || text == "" {
		return matches
	}

	for _, m := range schema.pattern.FindAllStringSubmatch(text, -1) {
		if len(m) < 4 {
			continue
		}
		matches[m[1]] = m[2] + m[3]
	}
	return matches
}

// ParseAmount converts an amount string such as "1,234.56", "$80.00" or
// "-$1,600.00" to a decimal. Grouping commas, currency markers and spaces
// are dropped; the sign is kept.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(",", "", "$", "", " ", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
