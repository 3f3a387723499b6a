package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/billgen/cfdi-bill-generator/dto"
)

// Rounding of withholding rates as the portal accepts them.
const (
	ratePlaces         int32 = 7
	qualitasRatePlaces int32 = 6
)

var ivaRate = decimal.RequireFromString("0.16")

// Rate returns withheld/base rounded to places decimals, or zero when the
// base is zero.
func Rate(withheld, base decimal.Decimal, places int32) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return withheld.DivRound(base, places)
}

// TaxCalculator derives the report figures from accumulated totals.
type TaxCalculator struct{}

func NewTaxCalculator() *TaxCalculator {
	return &TaxCalculator{}
}

// Report computes rates, subtotal, taxes and total for one insurer.
func (c *TaxCalculator) Report(insurer dto.Insurer, group dto.TaxGroup, totals dto.Totals) (dto.TaxReport, error) {
	report := dto.TaxReport{
		Insurer: insurer.ID(),
		Totals:  totals.Clone(),
		Rates:   map[string]decimal.Decimal{},
	}

	isr := totals.Get(dto.KeyISR)
	ivaRet := totals.Get(dto.KeyIVARet)
	report.WithheldTaxes = isr.Add(ivaRet)

	switch insurer {
	case dto.InsurerAxa:
		damage := totals.Get(dto.KeyDamage)
		life := totals.Get(dto.KeyLife)
		ivaTras := totals.Get(dto.KeyIVATras)

		report.Rates[dto.RateISRDamage] = Rate(isr, damage, ratePlaces)
		report.Rates[dto.RateIVARetDamage] = Rate(ivaRet, damage, ratePlaces)
		report.Rates[dto.RateISRLife] = Rate(isr, life, ratePlaces)
		report.Subtotal = damage.Add(life)
		report.ComputedIVA = damage.Mul(ivaRate)
		report.TransferredTaxes = ivaTras
		report.Total = life.Add(damage).Add(ivaTras).Sub(ivaRet).Sub(isr)

	case dto.InsurerQualitas:
		imp := totals.Get(dto.KeyImport)
		total := totals.Get(dto.KeyTotal)

		report.Rates[dto.RateISRImport] = Rate(isr, imp, qualitasRatePlaces)
		report.Rates[dto.RateIVARetImport] = Rate(ivaRet, imp, qualitasRatePlaces)
		report.Subtotal = total
		report.ComputedIVA = imp.Mul(ivaRate)
		report.TransferredTaxes = totals.Get(dto.KeyIVA)
		// The statement's own TOTAL is reported as read.
		report.Total = total
		report.Commissions = totals.Get(dto.KeyCommissions)

	case dto.InsurerPotosi:
		if group == dto.TaxGroupNone {
			group = dto.TaxGroupDamage
		}
		subtotal := totals.Get(dto.KeySubtotal)
		iva := totals.Get(dto.KeyIVA)

		report.TaxGroup = group.String()
		report.Rates[dto.RateIVARetSubtotal] = Rate(ivaRet, subtotal, ratePlaces)
		report.Rates[dto.RateISRSubtotal] = Rate(isr, subtotal, ratePlaces)
		report.Subtotal = subtotal
		report.TransferredTaxes = iva
		report.Total = subtotal.Add(iva).Sub(ivaRet).Sub(isr)

	default:
		return dto.TaxReport{}, fmt.Errorf("%w: %d", dto.ErrUnknownInsurer, int(insurer))
	}

	return report, nil
}
