package service

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/billgen/cfdi-bill-generator/dto"
)

const (
	SheetTotals   = "Totals"
	SheetReport   = "Report"
	SheetConcepts = "Concepts"
)

// ExportBillXLSX returns a workbook (as bytes) with the accumulated totals,
// the tax report and the draft concepts of a bill.
func ExportBillXLSX(resp *dto.BillResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range []string{SheetTotals, SheetReport, SheetConcepts} {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, err
			}
			continue
		}
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}

	writeRow := func(sheet string, row int, values ...any) {
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if d, ok := v.(decimal.Decimal); ok {
				v = d.InexactFloat64()
			}
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	// Totals
	writeRow(SheetTotals, 1, "Field", "Amount")
	keys := make([]string, 0, len(resp.Report.Totals))
	for k := range resp.Report.Totals {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for i, k := range keys {
		writeRow(SheetTotals, i+2, k, resp.Report.Totals.Get(dto.FieldKey(k)))
	}

	// Report
	report := resp.Report
	rows := [][]any{
		{"Run", resp.RunID},
		{"Insurer", report.Insurer},
		{"Tax group", report.TaxGroup},
		{"Subtotal", report.Subtotal},
		{"Computed IVA", report.ComputedIVA},
		{"Transferred taxes", report.TransferredTaxes},
		{"Withheld taxes", report.WithheldTaxes},
		{"Total", report.Total},
		{"Commissions", report.Commissions},
		{"Grand total", resp.Draft.GrandTotal},
	}
	rateNames := make([]string, 0, len(report.Rates))
	for name := range report.Rates {
		rateNames = append(rateNames, name)
	}
	sort.Strings(rateNames)
	for _, name := range rateNames {
		rows = append(rows, []any{"Rate " + name, report.Rates[name].String()})
	}
	for i, r := range rows {
		writeRow(SheetReport, i+1, r...)
	}

	// Concepts
	writeRow(SheetConcepts, 1, "Product code", "Description", "Unit value", "ISR rate", "IVA ret rate", "Shares taxes")
	for i, c := range resp.Draft.Concepts {
		writeRow(SheetConcepts, i+2, c.ProductCode, c.Description, c.UnitValue, c.ISRRate.String(), c.IVARetRate.String(), c.SharesTaxes)
	}

	_ = f.SetColWidth(SheetTotals, "A", "B", 16)
	_ = f.SetColWidth(SheetReport, "A", "A", 22)
	_ = f.SetColWidth(SheetReport, "B", "B", 40)
	_ = f.SetColWidth(SheetConcepts, "A", "A", 56)
	_ = f.SetColWidth(SheetConcepts, "B", "F", 18)

	if idx, err := f.GetSheetIndex(SheetReport); err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
