package utils

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/billgen/cfdi-bill-generator/dto"
)

// Separator conventions between a label and its amount.
const (
	// SeparatorColon accepts optional whitespace around the colon: "Vida : $5,000.00".
	SeparatorColon = `\s*:\s*`
	// SeparatorSpacedColon requires whitespace before the colon and none after: "IMPORTE :1,000.00".
	SeparatorSpacedColon = `\s+:`
)

// amountPattern captures an optional sign, an optional currency marker and
// a number with optional thousands grouping and decimals.
const amountPattern = `(-?)\s*\$?\s*(\d[\d,]*(?:\.\d+)?)`

// FieldLabel binds a semantic key to the label printed in the source.
type FieldLabel struct {
	Key   dto.FieldKey
	Label string
}

// FieldSchema is the static description of one insurer's source document.
type FieldSchema struct {
	Name    string
	Fields  []FieldLabel
	pattern *regexp.Regexp
}

// NewFieldSchema compiles the label pattern for the given fields.
func NewFieldSchema(name, separator string, fields ...FieldLabel) (FieldSchema, error) {
	if len(fields) == 0 {
		return FieldSchema{}, fmt.Errorf("schema %s has no fields", name)
	}

	labels := make([]string, 0, len(fields))
	seen := make(map[dto.FieldKey]bool, len(fields))
	for _, f := range fields {
		if seen[f.Key] {
			return FieldSchema{}, fmt.Errorf("schema %s: duplicate key %s", name, f.Key)
		}
		seen[f.Key] = true
		labels = append(labels, regexp.QuoteMeta(f.Label))
	}
	// Longest first so "No Vida" is tried before "Vida".
	sort.SliceStable(labels, func(i, j int) bool { return len(labels[i]) > len(labels[j]) })

	pattern, err := regexp.Compile(`(` + strings.Join(labels, "|") + `)` + separator + amountPattern)
	if err != nil {
		return FieldSchema{}, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	return FieldSchema{
		Name:    name,
		Fields:  fields,
		pattern: pattern,
	}, nil
}

func mustSchema(name, separator string, fields ...FieldLabel) FieldSchema {
	s, err := NewFieldSchema(name, separator, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Keys returns the semantic keys in schema order.
func (s FieldSchema) Keys() []dto.FieldKey {
	keys := make([]dto.FieldKey, len(s.Fields))
	for i, f := range s.Fields {
		keys[i] = f.Key
	}
	return keys
}


var (
	AxaSchema = mustSchema("axa", SeparatorColon,
		FieldLabel{dto.KeyDamage, "No Vida"},
		FieldLabel{dto.KeyLife, "Vida"},
		FieldLabel{dto.KeyIVATras, "Acreditado"},
		FieldLabel{dto.KeyISR, "I.S.R."},
		FieldLabel{dto.KeyIVARet, "Retenido"},
	)

	QualitasSchema = mustSchema("qualitas", SeparatorSpacedColon,
		FieldLabel{dto.KeyImport, "IMPORTE"},
		FieldLabel{dto.KeyIVA, "I.V.A."},
		FieldLabel{dto.KeyTotal, "TOTAL"},
		FieldLabel{dto.KeyISR, "I.S.R."},
		FieldLabel{dto.KeyIVARet, "LEY"},
		FieldLabel{dto.KeyCommissions, "NETAS"},
	)

	PotosiDamageSchema = mustSchema("potosi-damage", SeparatorColon,
		FieldLabel{dto.KeySubtotal, "D_Subtotal"},
		FieldLabel{dto.KeyIVA, "D_I.V.A."},
		FieldLabel{dto.KeyIVARet, "D_I.V.A. Ret."},
		FieldLabel{dto.KeyISR, "D_I.S.R."},
		FieldLabel{dto.KeyTotal, "D_Total"},
	)

	PotosiLifeSchema = mustSchema("potosi-life", SeparatorColon,
		FieldLabel{dto.KeySubtotal, "V_Subtotal"},
		FieldLabel{dto.KeyIVA, "V_I.V.A."},
		FieldLabel{dto.KeyIVARet, "V_I.V.A. Ret."},
		FieldLabel{dto.KeyISR, "V_I.S.R."},
		FieldLabel{dto.KeyTotal, "V_Total"},
	)
)

type schemaKey struct {
	insurer dto.Insurer
	group   dto.TaxGroup
}

var schemas = map[schemaKey]FieldSchema{
	{dto.InsurerAxa, dto.TaxGroupNone}:      AxaSchema,
	{dto.InsurerQualitas, dto.TaxGroupNone}: QualitasSchema,
	{dto.InsurerPotosi, dto.TaxGroupDamage}: PotosiDamageSchema,
	{dto.InsurerPotosi, dto.TaxGroupLife}:   PotosiLifeSchema,
}

// SchemaFor returns the field schema of an insurer. Potosí requires a tax
// group and defaults to Damage when none is given.
func SchemaFor(insurer dto.Insurer, group dto.TaxGroup) (FieldSchema, error) {
	if insurer.HasTaxGroups() && group == dto.TaxGroupNone {
		group = dto.TaxGroupDamage
	}
	if !insurer.HasTaxGroups() {
		group = dto.TaxGroupNone
	}
	s, ok := schemas[schemaKey{insurer, group}]
	if !ok {
		return FieldSchema{}, fmt.Errorf("%w: %d", dto.ErrUnknownInsurer, int(insurer))
	}
	return s, nil
}
