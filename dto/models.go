package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownInsurer  = errors.New("unknown insurer")
	ErrUnknownTaxGroup = errors.New("unknown tax group")
)

// Insurer identifies one of the companies commissions are billed to.
type Insurer int

const (
	InsurerAxa Insurer = iota + 1
	InsurerQualitas
	InsurerPotosi
)

// Insurers lists every supported insurer in menu order.
var Insurers = []Insurer{InsurerQualitas, InsurerPotosi, InsurerAxa}

var insurerIDs = map[Insurer]string{
	InsurerAxa:      "axa",
	InsurerQualitas: "qualitas",
	InsurerPotosi:   "potosi",
}

var insurerNames = map[Insurer]string{
	InsurerAxa:      "Axa Seguros",
	InsurerQualitas: "Quálitas",
	InsurerPotosi:   "Seguros el Potosí",
}

var insurerAliases = map[string]Insurer{
	"a":                 InsurerAxa,
	"axa":               InsurerAxa,
	"axa seguros":       InsurerAxa,
	"q":                 InsurerQualitas,
	"qualitas":          InsurerQualitas,
	"quálitas":          InsurerQualitas,
	"sp":                InsurerPotosi,
	"potosi":            InsurerPotosi,
	"potosí":            InsurerPotosi,
	"seguros el potosi": InsurerPotosi,
	"seguros el potosí": InsurerPotosi,
}

// ParseInsurer maps the accepted spellings of an insurer to its identifier.
func ParseInsurer(s string) (Insurer, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if ins, ok := insurerAliases[key]; ok {
		return ins, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInsurer, s)
}

// ID returns the stable lowercase identifier used in config and URLs.
func (i Insurer) ID() string {
	return insurerIDs[i]
}

// String returns the display name of the insurer.
func (i Insurer) String() string {
	if name, ok := insurerNames[i]; ok {
		return name
	}
	return fmt.Sprintf("Insurer(%d)", int(i))
}

// HasTaxGroups reports whether the insurer's export is split by tax group.
func (i Insurer) HasTaxGroups() bool {
	return i == InsurerPotosi
}

// ReadsPDF reports whether the insurer's statements are PDF files.
func (i Insurer) ReadsPDF() bool {
	return i == InsurerQualitas
}

// TaxGroup selects the Damage or Life business line.
type TaxGroup int

const (
	TaxGroupNone TaxGroup = iota
	TaxGroupDamage
	TaxGroupLife
)

// ParseTaxGroup maps D/Damage/Daños and L/Life/Vida to a tax group.
// An empty string means no group was chosen.
func ParseTaxGroup(s string) (TaxGroup, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return TaxGroupNone, nil
	case "d", "damage", "daños", "danos":
		return TaxGroupDamage, nil
	case "l", "v", "life", "vida":
		return TaxGroupLife, nil
	}
	return TaxGroupNone, fmt.Errorf("%w: %q", ErrUnknownTaxGroup, s)
}

func (g TaxGroup) String() string {
	switch g {
	case TaxGroupDamage:
		return "damage"
	case TaxGroupLife:
		return "life"
	}
	return ""
}

// Label returns the Spanish name of the group used in reports.
func (g TaxGroup) Label() string {
	switch g {
	case TaxGroupDamage:
		return "Daños"
	case TaxGroupLife:
		return "Vida"
	}
	return ""
}

// FieldKey is the semantic name of an extracted amount.
type FieldKey string

const (
	KeyDamage      FieldKey = "damage"
	KeyLife        FieldKey = "life"
	KeyISR         FieldKey = "isr"
	KeyIVARet      FieldKey = "iva_ret"
	KeyIVATras     FieldKey = "iva_tras"
	KeyIVA         FieldKey = "iva"
	KeySubtotal    FieldKey = "subtotal"
	KeyImport      FieldKey = "import"
	KeyTotal       FieldKey = "total"
	KeyCommissions FieldKey = "commissions"
)

// Totals maps each semantic key to its running amount.
type Totals map[FieldKey]decimal.Decimal

// Get returns the amount for key, zero when absent.
func (t Totals) Get(key FieldKey) decimal.Decimal {
	if v, ok := t[key]; ok {
		return v
	}
	return decimal.Zero
}

// Clone returns an independent copy.
func (t Totals) Clone() Totals {
	out := make(Totals, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
