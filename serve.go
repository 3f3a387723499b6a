package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/billgen/cfdi-bill-generator/handler"
	"github.com/billgen/cfdi-bill-generator/service"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

Endpoints:
  GET  /health                  - Basic server health check
  POST /api/v1/bills/:insurer   - Build a bill from uploaded statements
  POST /api/v1/cfdi/verify      - Check the QR code of a stamped CFDI

Examples:
  billgen serve                 # Start on the configured port (8080)
  billgen serve --port 3000     # Start on a custom port`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		port := appConfig.ServerPort
		if servePort != "" {
			port = servePort
		}

		if appLog.GetLevel() > zerolog.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}

		ocr, closeOCR := newOCRClient(appConfig)
		defer closeOCR()

		pdfProcessor := service.NewPDFProcessor()
		billingService := service.NewBillingService(appConfig, pdfProcessor, ocr, appLog)
		cfdiService := service.NewCFDIService(appConfig, pdfProcessor, ocr, appLog)

		router := handler.NewRouter(
			handler.NewBillHandler(billingService, appConfig.MaxFileSize, appLog),
			handler.NewCFDIHandler(cfdiService, appConfig.MaxFileSize, appLog),
		)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			appLog.Info().Str("port", port).Msg("Starting CFDI bill generator API")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		appLog.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (default: server_port from config)")
}
