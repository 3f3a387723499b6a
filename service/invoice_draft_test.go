package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billgen/cfdi-bill-generator/config"
	"github.com/billgen/cfdi-bill-generator/dto"
)

func draftFor(t *testing.T, insurer dto.Insurer, group dto.TaxGroup, totals dto.Totals) (dto.InvoiceDraft, []string) {
	t.Helper()
	report, err := NewTaxCalculator().Report(insurer, group, totals)
	require.NoError(t, err)
	return BuildInvoiceDraft(report, DraftOptions{
		Insurer:  insurer,
		TaxGroup: group,
		Period:   "Enero 2024",
		Profile:  config.DefaultInsurers()[insurer.ID()],
	})
}

func TestBuildInvoiceDraftAxa(t *testing.T) {
	draft, warnings := draftFor(t, dto.InsurerAxa, dto.TaxGroupNone, dto.Totals{
		dto.KeyDamage:  dec("10000"),
		dto.KeyLife:    dec("5000"),
		dto.KeyISR:     dec("150"),
		dto.KeyIVARet:  dec("80"),
		dto.KeyIVATras: dec("1600"),
	})

	assert.Empty(t, warnings)
	assert.Equal(t, config.DefaultCFDIUse, draft.CFDIUse)
	assert.Equal(t, "En una sola exhibición", draft.PaymentCondition)
	require.Len(t, draft.Concepts, 2)

	damage := draft.Concepts[0]
	assert.Equal(t, DamageProductCode, damage.ProductCode)
	assert.Equal(t, " Enero 2024 Agente 124109", damage.Description)
	assert.True(t, dec("10000").Equal(damage.UnitValue))
	assert.True(t, dec("0.015").Equal(damage.ISRRate))
	assert.True(t, dec("0.008").Equal(damage.IVARetRate))

	life := draft.Concepts[1]
	assert.Equal(t, LifeProductCode, life.ProductCode)
	assert.True(t, life.SharesTaxes)
	assert.True(t, life.ISRRate.IsZero())

	assert.True(t, dec("150").Equal(draft.ISR))
	assert.True(t, dec("80").Equal(draft.IVARet))
	assert.Equal(t, "16370.00", draft.GrandTotal.StringFixed(2))
}

func TestBuildInvoiceDraftLifeOnly(t *testing.T) {
	draft, warnings := draftFor(t, dto.InsurerAxa, dto.TaxGroupNone, dto.Totals{
		dto.KeyLife: dec("5000"),
		dto.KeyISR:  dec("150"),
	})

	assert.Equal(t, []string{"There is no information in Damage section"}, warnings)
	require.Len(t, draft.Concepts, 1)
	assert.False(t, draft.Concepts[0].SharesTaxes)
	assert.True(t, dec("0.03").Equal(draft.Concepts[0].ISRRate))
}

func TestBuildInvoiceDraftQualitas(t *testing.T) {
	draft, _ := draftFor(t, dto.InsurerQualitas, dto.TaxGroupNone, dto.Totals{
		dto.KeyImport:      dec("1000"),
		dto.KeyTotal:       dec("1160"),
		dto.KeyISR:         dec("100"),
		dto.KeyCommissions: dec("953.33"),
	})

	require.Len(t, draft.Concepts, 1)
	assert.Equal(t, " Enero 2024 Agente 05886", draft.Concepts[0].Description)
	assert.True(t, dec("0.1").Equal(draft.Concepts[0].ISRRate))
	assert.True(t, dec("1000").Equal(draft.Damage))
	assert.True(t, dec("953.33").Equal(draft.GrandTotal))
}

func TestBuildInvoiceDraftPotosi(t *testing.T) {
	draft, _ := draftFor(t, dto.InsurerPotosi, dto.TaxGroupDamage, dto.Totals{
		dto.KeySubtotal: dec("2000"),
		dto.KeyIVA:      dec("320"),
		dto.KeyIVARet:   dec("213.33"),
		dto.KeyISR:      dec("200"),
	})

	require.Len(t, draft.Concepts, 1)
	assert.Equal(t, DamageProductCode, draft.Concepts[0].ProductCode)
	assert.Equal(t, " Enero 2024", draft.Concepts[0].Description)
	assert.Equal(t, "SPO830427DQ1", draft.ReceiverRFC)
	assert.Equal(t, "SPO830427DQ1 SEGUROS EL POTOSI, S.A.", draft.Receiver)
	assert.True(t, dec("2000").Equal(draft.Damage))
	assert.Equal(t, "1906.67", draft.GrandTotal.StringFixed(2))
}

func TestBuildInvoiceDraftEmpty(t *testing.T) {
	draft, warnings := draftFor(t, dto.InsurerPotosi, dto.TaxGroupLife, dto.Totals{})

	assert.Empty(t, draft.Concepts)
	assert.Equal(t, []string{"There is no information in Life section"}, warnings)
}
