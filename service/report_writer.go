package service

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"gopkg.in/yaml.v3"

	"github.com/billgen/cfdi-bill-generator/dto"
)

// Output formats accepted by WriteOutput.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

var printer = message.NewPrinter(language.MustParse("es-MX"))

func money(d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

// WriteOutput writes v as YAML or JSON. Text output is only defined for
// bill and CFDI responses.
func WriteOutput(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatText, "":
		switch r := v.(type) {
		case *dto.BillResponse:
			return writeBillText(w, r)
		case *dto.CFDIVerifyResponse:
			return writeCFDIText(w, r)
		}
		return fmt.Errorf("no text layout for %T", v)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeBillText(w io.Writer, resp *dto.BillResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	report := resp.Report
	draft := resp.Draft

	fmt.Fprintf(tw, "Run\t%s\t\n", resp.RunID)
	fmt.Fprintf(tw, "Insurer\t%s\t\n", report.Insurer)
	if report.TaxGroup != "" {
		fmt.Fprintf(tw, "Tax group\t%s\t\n", report.TaxGroup)
	}
	for _, d := range resp.Documents {
		fmt.Fprintf(tw, "Document\t%s (%d pages)\t\n", d.Name, d.PagesRead)
	}
	fmt.Fprintln(tw, "\t\t")

	keys := make([]string, 0, len(report.Totals))
	for k := range report.Totals {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\t\n", k, money(report.Totals.Get(dto.FieldKey(k))))
	}
	fmt.Fprintln(tw, "\t\t")

	names := make([]string, 0, len(report.Rates))
	for n := range report.Rates {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(tw, "rate %s\t%s\t\n", n, report.Rates[n].String())
	}

	fmt.Fprintf(tw, "Subtotal\t%s\t\n", money(report.Subtotal))
	fmt.Fprintf(tw, "IVA 16%%\t%s\t\n", money(report.ComputedIVA))
	fmt.Fprintf(tw, "Transferred taxes\t%s\t\n", money(report.TransferredTaxes))
	fmt.Fprintf(tw, "Withheld taxes\t%s\t\n", money(report.WithheldTaxes))
	fmt.Fprintf(tw, "Total\t%s\t\n", money(report.Total))
	if !report.Commissions.IsZero() {
		fmt.Fprintf(tw, "Commissions\t%s\t\n", money(report.Commissions))
	}
	fmt.Fprintln(tw, "\t\t")

	fmt.Fprintf(tw, "Receiver\t%s\t\n", draft.Receiver)
	fmt.Fprintf(tw, "CFDI use\t%s\t\n", draft.CFDIUse)
	fmt.Fprintf(tw, "Payment\t%s\t\n", draft.PaymentCondition)
	for _, c := range draft.Concepts {
		line := fmt.Sprintf("%s%s  %s  ISR %s  IVA ret %s", c.ProductCode, c.Description, money(c.UnitValue), c.ISRRate, c.IVARetRate)
		if c.SharesTaxes {
			line += "  (taxes on first concept)"
		}
		fmt.Fprintf(tw, "Concept\t%s\t\n", line)
	}
	fmt.Fprintf(tw, "Grand total\t%s\t\n", money(draft.GrandTotal))

	if rec := resp.Reconciliation; rec != nil {
		status := "OK"
		if !rec.Matched {
			status = "MISMATCH"
		}
		fmt.Fprintf(tw, "Portal total\t%s %s\t\n", money(rec.Portal), status)
	}
	for _, warn := range resp.Warnings {
		fmt.Fprintf(tw, "Warning\t%s\t\n", warn)
	}

	return tw.Flush()
}

func writeCFDIText(w io.Writer, resp *dto.CFDIVerifyResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "UUID\t%s\n", resp.QR.UUID)
	fmt.Fprintf(tw, "Issuer\t%s\n", resp.QR.IssuerRFC)
	fmt.Fprintf(tw, "Receiver\t%s (match: %t)\n", resp.QR.ReceiverRFC, resp.ReceiverMatch)
	fmt.Fprintf(tw, "Stamped total\t%s\n", money(resp.QR.Total))
	fmt.Fprintf(tw, "Expected total\t%s (match: %t)\n", money(resp.Reconciliation.Expected), resp.Reconciliation.Matched)
	return tw.Flush()
}
