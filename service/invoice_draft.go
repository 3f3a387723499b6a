package service

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/billgen/cfdi-bill-generator/config"
	"github.com/billgen/cfdi-bill-generator/dto"
)

// Product/service codes of the SAT catalogue used on commission invoices.
const (
	DamageProductCode = "80141600 Actividades de ventas y promoción de negocios"
	LifeProductCode   = "80141601 Servicios de promoción de ventas"
)

// DraftOptions carries the per-run values of a draft that do not come from
// the statement.
type DraftOptions struct {
	Insurer  dto.Insurer
	TaxGroup dto.TaxGroup
	Period   string
	CFDIUse  string
	Profile  config.InsurerProfile
}

// conceptDescription builds the text appended to the concept description,
// e.g. " Enero 2024 Agente 124109".
func conceptDescription(period, agent string) string {
	var sb strings.Builder
	if period != "" {
		sb.WriteString(" " + strings.TrimSpace(period))
	}
	if agent != "" {
		sb.WriteString(" Agente " + agent)
	}
	return sb.String()
}

// BuildInvoiceDraft turns a report into the concept lines and totals the
// portal step captures. The returned warnings list the concepts skipped
// because their amount is zero.
func BuildInvoiceDraft(report dto.TaxReport, opts DraftOptions) (dto.InvoiceDraft, []string) {
	totals := report.Totals
	draft := dto.InvoiceDraft{
		Receiver:         opts.Profile.ReceiverLabel(),
		ReceiverRFC:      opts.Profile.RFC,
		ReceiverName:     opts.Profile.Name,
		CFDIUse:          opts.CFDIUse,
		PaymentCondition: opts.Profile.PaymentCondition,
		Period:           opts.Period,
		Concepts:         []dto.Concept{},
		ISR:              totals.Get(dto.KeyISR),
		IVARet:           totals.Get(dto.KeyIVARet),
		GrandTotal:       report.Total,
	}
	if draft.CFDIUse == "" {
		draft.CFDIUse = config.DefaultCFDIUse
	}
	description := conceptDescription(opts.Period, opts.Profile.AgentNumber)

	var warnings []string
	add := func(group dto.TaxGroup, c dto.Concept) {
		if c.UnitValue.IsZero() {
			warnings = append(warnings, fmt.Sprintf("There is no information in %s section", cases.Title(language.Und).String(group.String())))
			return
		}
		c.Description = description
		draft.Concepts = append(draft.Concepts, c)
	}

	switch opts.Insurer {
	case dto.InsurerAxa:
		draft.Damage = totals.Get(dto.KeyDamage)
		draft.Life = totals.Get(dto.KeyLife)

		add(dto.TaxGroupDamage, dto.Concept{
			ProductCode: DamageProductCode,
			UnitValue:   draft.Damage,
			ISRRate:     report.Rates[dto.RateISRDamage],
			IVARetRate:  report.Rates[dto.RateIVARetDamage],
		})
		life := dto.Concept{ProductCode: LifeProductCode, UnitValue: draft.Life}
		if draft.Damage.IsZero() {
			life.ISRRate = report.Rates[dto.RateISRLife]
		} else {
			life.SharesTaxes = true
		}
		add(dto.TaxGroupLife, life)

	case dto.InsurerQualitas:
		draft.Damage = totals.Get(dto.KeyImport)
		draft.GrandTotal = report.Commissions

		add(dto.TaxGroupDamage, dto.Concept{
			ProductCode: DamageProductCode,
			UnitValue:   draft.Damage,
			ISRRate:     report.Rates[dto.RateISRImport],
			IVARetRate:  report.Rates[dto.RateIVARetImport],
		})

	case dto.InsurerPotosi:
		group := opts.TaxGroup
		if group == dto.TaxGroupNone {
			group = dto.TaxGroupDamage
		}
		c := dto.Concept{
			ProductCode: DamageProductCode,
			UnitValue:   totals.Get(dto.KeySubtotal),
			ISRRate:     report.Rates[dto.RateISRSubtotal],
			IVARetRate:  report.Rates[dto.RateIVARetSubtotal],
		}
		if group == dto.TaxGroupLife {
			c.ProductCode = LifeProductCode
			draft.Life = c.UnitValue
		} else {
			draft.Damage = c.UnitValue
		}
		add(group, c)
	}

	return draft, warnings
}
