package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/billgen/cfdi-bill-generator/dto"
	"github.com/billgen/cfdi-bill-generator/service"
)

var (
	verifyInsurer  string
	verifyFile     string
	verifyExpected string
	verifyPassword string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the QR code of a stamped CFDI",
	Long: `Decode the SAT verification QR code of a stamped CFDI (PDF or image)
and check that it was issued to the insurer with the expected total.

Examples:
  billgen verify --insurer axa --file factura.pdf --expected-total 16370.00`,
	RunE: func(cmd *cobra.Command, args []string) error {
		insurer, err := dto.ParseInsurer(verifyInsurer)
		if err != nil {
			return err
		}
		expected, err := decimal.NewFromString(verifyExpected)
		if err != nil {
			return fmt.Errorf("invalid --expected-total: %w", err)
		}

		data, err := os.ReadFile(verifyFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", verifyFile, err)
		}

		ocr, closeOCR := newOCRClient(appConfig)
		defer closeOCR()

		svc := service.NewCFDIService(appConfig, service.NewPDFProcessor(), ocr, appLog)
		resp, verifyErr := svc.VerifyFile(cmd.Context(), &dto.CFDIVerifyRequest{
			Insurer:       insurer,
			Document:      dto.Document{Name: filepath.Base(verifyFile), Data: data},
			MimeType:      mime.TypeByExtension(filepath.Ext(verifyFile)),
			Password:      verifyPassword,
			ExpectedTotal: expected,
		})
		if resp == nil {
			return verifyErr
		}

		if err := service.WriteOutput(cmd.OutOrStdout(), outputFormat, resp); err != nil {
			return err
		}
		return verifyErr
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyInsurer, "insurer", "", "insurer the CFDI was issued to")
	verifyCmd.Flags().StringVar(&verifyFile, "file", "", "stamped CFDI (PDF, PNG or JPEG)")
	verifyCmd.Flags().StringVar(&verifyExpected, "expected-total", "", "grand total the CFDI must carry")
	verifyCmd.Flags().StringVar(&verifyPassword, "password", "", "PDF password")
	for _, name := range []string{"insurer", "file", "expected-total"} {
		_ = verifyCmd.MarkFlagRequired(name)
	}
}
