package dto

import (
	"github.com/shopspring/decimal"
)

// Rate names used in TaxReport.Rates.
const (
	RateISRDamage      = "isr_damage"
	RateIVARetDamage   = "iva_ret_damage"
	RateISRLife        = "isr_life"
	RateISRImport      = "isr_import"
	RateIVARetImport   = "iva_ret_import"
	RateISRSubtotal    = "isr_subtotal"
	RateIVARetSubtotal = "iva_ret_subtotal"
)

// TaxReport holds the figures derived from a completed Totals accumulator.
type TaxReport struct {
	Insurer          string                     `json:"insurer" yaml:"insurer"`
	TaxGroup         string                     `json:"tax_group,omitempty" yaml:"tax_group,omitempty"`
	Totals           Totals                     `json:"totals" yaml:"totals"`
	Rates            map[string]decimal.Decimal `json:"rates" yaml:"rates"`
	Subtotal         decimal.Decimal            `json:"subtotal" yaml:"subtotal"`
	ComputedIVA      decimal.Decimal            `json:"computed_iva" yaml:"computed_iva"`
	TransferredTaxes decimal.Decimal            `json:"transferred_taxes" yaml:"transferred_taxes"`
	WithheldTaxes    decimal.Decimal            `json:"withheld_taxes" yaml:"withheld_taxes"`
	Total            decimal.Decimal            `json:"total" yaml:"total"`
	Commissions      decimal.Decimal            `json:"commissions,omitempty" yaml:"commissions,omitempty"`
}

// Concept is one line of the CFDI the portal collaborator captures.
type Concept struct {
	ProductCode string          `json:"product_code" yaml:"product_code"`
	Description string          `json:"description" yaml:"description"`
	UnitValue   decimal.Decimal `json:"unit_value" yaml:"unit_value"`
	ISRRate     decimal.Decimal `json:"isr_rate" yaml:"isr_rate"`
	IVARetRate  decimal.Decimal `json:"iva_ret_rate" yaml:"iva_ret_rate"`
	// SharesTaxes marks a concept whose withholdings were already applied
	// on a previous concept of the same invoice.
	SharesTaxes bool `json:"shares_taxes,omitempty" yaml:"shares_taxes,omitempty"`
}

// InvoiceDraft is everything the portal step needs to capture and stamp
// the invoice.
type InvoiceDraft struct {
	// Receiver is the entry to pick in the portal's receiver list.
	Receiver         string          `json:"receiver" yaml:"receiver"`
	ReceiverRFC      string          `json:"receiver_rfc" yaml:"receiver_rfc"`
	ReceiverName     string          `json:"receiver_name" yaml:"receiver_name"`
	CFDIUse          string          `json:"cfdi_use" yaml:"cfdi_use"`
	PaymentCondition string          `json:"payment_condition" yaml:"payment_condition"`
	Period           string          `json:"period,omitempty" yaml:"period,omitempty"`
	Concepts         []Concept       `json:"concepts" yaml:"concepts"`
	Damage           decimal.Decimal `json:"damage" yaml:"damage"`
	Life             decimal.Decimal `json:"life" yaml:"life"`
	ISR              decimal.Decimal `json:"isr" yaml:"isr"`
	IVARet           decimal.Decimal `json:"iva_ret" yaml:"iva_ret"`
	GrandTotal       decimal.Decimal `json:"grand_total" yaml:"grand_total"`
}

// Reconciliation is the outcome of checking the expected grand total
// against the portal's own total.
type Reconciliation struct {
	Expected  decimal.Decimal `json:"expected" yaml:"expected"`
	Portal    decimal.Decimal `json:"portal" yaml:"portal"`
	Tolerance decimal.Decimal `json:"tolerance" yaml:"tolerance"`
	Matched   bool            `json:"matched" yaml:"matched"`
	Message   string          `json:"message,omitempty" yaml:"message,omitempty"`
}
