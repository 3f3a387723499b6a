package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/billgen/cfdi-bill-generator/dto"
	"github.com/billgen/cfdi-bill-generator/service"
)

var (
	runInsurer     string
	runTaxGroup    string
	runPeriod      string
	runPassword    string
	runPortalTotal string
	runXLSX        string
	runFiles       []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the invoice data for one insurer",
	Long: `Read the statements of one insurer, add up their amounts and print
the tax report and the invoice draft for the SAT portal.

Missing --insurer, --tax-group or --period values are asked for when
stdin is a terminal.

Examples:
  billgen run --insurer axa --file Axa.txt --period "Enero 2024"
  billgen run --insurer potosi --tax-group life --file SP.txt
  billgen run --insurer qualitas --file edo1.pdf --file edo2.pdf --xlsx bill.xlsx -o yaml
  billgen run --insurer axa --file Axa.txt --portal-total 16370.02`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		interactive := isInteractive()
		p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())

		var insurer dto.Insurer
		var err error
		switch {
		case runInsurer != "":
			insurer, err = dto.ParseInsurer(runInsurer)
		case interactive:
			insurer, err = p.chooseInsurer()
		default:
			err = errors.New("--insurer is required")
		}
		if err != nil {
			return err
		}

		group, err := dto.ParseTaxGroup(runTaxGroup)
		if err != nil {
			return err
		}
		if insurer.HasTaxGroups() && group == dto.TaxGroupNone && interactive {
			if group, err = p.chooseTaxGroup(); err != nil {
				return err
			}
		}

		period := runPeriod
		if period == "" && interactive {
			if period, err = p.ask("Bill period (e.g. Enero 2024): "); err != nil {
				return err
			}
		}

		files := runFiles
		if len(files) == 0 && interactive {
			path, err := p.ask("Statement file: ")
			if err != nil {
				return err
			}
			if path != "" {
				files = []string{path}
			}
		}

		req := &dto.BillRequest{
			Insurer:  insurer,
			TaxGroup: group,
			Period:   period,
			Password: runPassword,
		}
		for _, path := range files {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			req.Documents = append(req.Documents, dto.Document{Name: filepath.Base(path), Data: data})
		}

		if runPortalTotal != "" {
			total, err := decimal.NewFromString(runPortalTotal)
			if err != nil {
				return fmt.Errorf("invalid --portal-total: %w", err)
			}
			req.PortalTotal = &total
		}

		ocr, closeOCR := newOCRClient(appConfig)
		defer closeOCR()

		svc := service.NewBillingService(appConfig, service.NewPDFProcessor(), ocr, appLog)
		resp, err := svc.Process(ctx, req)
		if err != nil {
			return err
		}

		if runXLSX != "" {
			data, err := service.ExportBillXLSX(resp)
			if err != nil {
				return err
			}
			if err := os.WriteFile(runXLSX, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", runXLSX, err)
			}
			appLog.Info().Str("path", runXLSX).Msg("workbook written")
		}

		return service.WriteOutput(cmd.OutOrStdout(), outputFormat, resp)
	},
}

func init() {
	runCmd.Flags().StringVar(&runInsurer, "insurer", "", "insurer: axa, qualitas or potosi")
	runCmd.Flags().StringVar(&runTaxGroup, "tax-group", "", "tax group for potosi: damage or life")
	runCmd.Flags().StringVar(&runPeriod, "period", "", "bill period written in the concept description")
	runCmd.Flags().StringVar(&runPassword, "password", "", "password of protected PDF statements")
	runCmd.Flags().StringVar(&runPortalTotal, "portal-total", "", "total shown by the portal, checked against the expected total")
	runCmd.Flags().StringVar(&runXLSX, "xlsx", "", "also write the bill to this XLSX file")
	runCmd.Flags().StringArrayVar(&runFiles, "file", nil, "statement file (repeatable)")
}
