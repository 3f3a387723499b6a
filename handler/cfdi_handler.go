package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/billgen/cfdi-bill-generator/dto"
	"github.com/billgen/cfdi-bill-generator/service"
)

// CFDIHandler handles stamped CFDI verification requests
type CFDIHandler struct {
	cfdiService *service.CFDIService
	maxFileSize int64
	log         zerolog.Logger
}

// NewCFDIHandler creates a new CFDIHandler instance
func NewCFDIHandler(cfdiService *service.CFDIService, maxFileSize int64, log zerolog.Logger) *CFDIHandler {
	return &CFDIHandler{
		cfdiService: cfdiService,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

// VerifyCFDI handles the POST /cfdi/verify endpoint
func (h *CFDIHandler) VerifyCFDI(c *gin.Context) {
	h.log.Info().Msg("Received CFDI verification request")

	file, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "A file is required", err)
		return
	}

	insurer, err := dto.ParseInsurer(c.PostForm("insurer"))
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Unknown insurer", err)
		return
	}

	expected, err := decimal.NewFromString(c.PostForm("expected_total"))
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid expected_total", err)
		return
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = inferMimeType(file.Filename)
	}
	if !isValidMimeType(mimeType) {
		h.sendError(c, http.StatusBadRequest, "Invalid file type. Supported: PDF, PNG, JPEG", nil)
		return
	}

	doc, err := readDocument(file, h.maxFileSize)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errFileTooLarge) {
			status = http.StatusBadRequest
		}
		h.sendError(c, status, "Failed to read uploaded file", err)
		return
	}

	h.log.Info().Str("file", file.Filename).Str("insurer", insurer.ID()).Msg("Processing CFDI file")

	result, err := h.cfdiService.VerifyFile(c.Request.Context(), &dto.CFDIVerifyRequest{
		Insurer:       insurer,
		Document:      doc,
		MimeType:      mimeType,
		Password:      c.PostForm("password"),
		ExpectedTotal: expected,
	})
	switch {
	case err == nil:
	case result != nil:
		// The QR was read; the mismatch details are in the body.
		h.log.Warn().Err(err).Msg("CFDI does not match the bill")
	case isRequestError(err):
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	case errors.Is(err, service.ErrNoQRCode):
		h.sendError(c, http.StatusUnprocessableEntity, "No CFDI QR code found", err)
		return
	case errors.Is(err, service.ErrBadPassword):
		h.sendError(c, http.StatusBadRequest, "Failed to decrypt PDF. Check password.", err)
		return
	default:
		h.sendError(c, http.StatusInternalServerError, "Failed to verify CFDI", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// sendError sends a structured error response
func (h *CFDIHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	sendError(c, h.log, "CFDI_VERIFICATION_FAILED", statusCode, message, err)
}

// isValidMimeType checks if the MIME type is supported
func isValidMimeType(mimeType string) bool {
	validTypes := []string{
		"application/pdf",
		"image/png",
		"image/jpeg",
		"image/jpg",
	}

	mimeType = strings.ToLower(mimeType)
	for _, valid := range validTypes {
		if strings.Contains(mimeType, valid) {
			return true
		}
	}
	return false
}

// inferMimeType infers MIME type from file extension
func inferMimeType(filename string) string {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".pdf") {
		return "application/pdf"
	} else if strings.HasSuffix(lower, ".png") {
		return "image/png"
	} else if strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") {
		return "image/jpeg"
	}
	return ""
}
