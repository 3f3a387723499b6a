package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/billgen/cfdi-bill-generator/client"
	"github.com/billgen/cfdi-bill-generator/config"
	"github.com/billgen/cfdi-bill-generator/logger"
	"github.com/billgen/cfdi-bill-generator/service"
)

var (
	cfgFile      string
	logLevel     string
	outputFormat string

	appConfig *config.Config
	appLog    zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "billgen",
	Short: "Commission invoice (CFDI) generator for insurance brokers",
	Long: `billgen reads the commission statements of AXA, Quálitas and
Seguros el Potosí, adds up their amounts and prepares the data needed to
stamp the commission invoice (CFDI) on the SAT portal:

  - Field extraction from text exports and PDF statements
  - Withholding rates, taxes and totals per insurer
  - Concept lines and grand total for the portal capture
  - Verification of the QR code of the stamped CFDI`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if f := cmd.Flag("log-level"); f != nil && f.Changed {
			cfg.LogLevel = logLevel
		}
		appConfig = cfg
		appLog = logger.New(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.billgen/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn or error",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", service.FormatText, "output format: text, yaml or json",
	)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// newOCRClient returns the tesseract client when OCR fallback is enabled.
func newOCRClient(cfg *config.Config) (service.OCRClient, func()) {
	if !cfg.OCRFallback {
		return nil, func() {}
	}
	tc := client.NewTesseractClient(cfg.TessdataPrefix, appLog)
	return tc, tc.Close
}
