package utils

import (
	"github.com/shopspring/decimal"

	"github.com/billgen/cfdi-bill-generator/dto"
)

// NewTotals returns an accumulator with every key of schema set to zero.
func NewTotals(schema FieldSchema) dto.Totals {
	totals := make(dto.Totals, len(schema.Fields))
	for _, f := range schema.Fields {
		totals[f.Key] = decimal.Zero
	}
	return totals
}

// Accumulate adds the amounts of matches to acc and returns the result as a
// new accumulator. A nil acc starts from zero. Every schema key is present
// in the result; labels missing from matches contribute zero.
func Accumulate(matches RawMatchSet, schema FieldSchema, acc dto.Totals) dto.Totals {
	totals, _ := AccumulateWithIssues(matches, schema, acc)
	return totals
}

// AccumulateWithIssues is Accumulate that also returns the labels whose
// amount could not be parsed. Those labels contribute zero.
func AccumulateWithIssues(matches RawMatchSet, schema FieldSchema, acc dto.Totals) (dto.Totals, []string) {
	totals := NewTotals(schema)
	for k, v := range acc {
		totals[k] = v
	}

	var invalid []string
	for _, f := range schema.Fields {
		raw, ok := matches[f.Label]
		if !ok {
			continue
		}
		amount, err := ParseAmount(raw)
		if err != nil {
			invalid = append(invalid, f.Label)
			continue
		}
		totals[f.Key] = totals[f.Key].Add(amount)
	}
	return totals, invalid
}
