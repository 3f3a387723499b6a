package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/billgen/cfdi-bill-generator/dto"
	"github.com/billgen/cfdi-bill-generator/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var errFileTooLarge = errors.New("file exceeds the maximum upload size")

type BillHandler struct {
	billingService *service.BillingService
	maxFileSize    int64
	log            zerolog.Logger
}

func NewBillHandler(billingService *service.BillingService, maxFileSize int64, log zerolog.Logger) *BillHandler {
	return &BillHandler{
		billingService: billingService,
		maxFileSize:    maxFileSize,
		log:            log,
	}
}

// CreateBill handles the POST /bills/:insurer endpoint
func (h *BillHandler) CreateBill(c *gin.Context) {
	h.log.Info().Str("insurer", c.Param("insurer")).Msg("Received bill request")

	insurer, err := dto.ParseInsurer(c.Param("insurer"))
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Unknown insurer", err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}

	files := form.File["files[]"]
	if len(files) == 0 {
		h.sendError(c, http.StatusBadRequest, "No files provided", nil)
		return
	}

	group, err := dto.ParseTaxGroup(c.PostForm("tax_group"))
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid tax group", err)
		return
	}

	request := &dto.BillRequest{
		Insurer:  insurer,
		TaxGroup: group,
		Period:   c.PostForm("period"),
		Password: c.PostForm("password"),
	}

	if raw := c.PostForm("portal_total"); raw != "" {
		total, err := decimal.NewFromString(raw)
		if err != nil {
			h.sendError(c, http.StatusBadRequest, "Invalid portal_total", err)
			return
		}
		request.PortalTotal = &total
	}

	for _, file := range files {
		doc, err := readDocument(file, h.maxFileSize)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, errFileTooLarge) {
				status = http.StatusBadRequest
			}
			h.sendError(c, status, "Failed to read uploaded file", err)
			return
		}
		request.Documents = append(request.Documents, doc)
	}

	h.log.Info().Int("files", len(files)).Msg("Processing files")

	response, err := h.billingService.Process(c.Request.Context(), request)
	if err != nil {
		if isRequestError(err) {
			h.sendError(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		h.sendError(c, http.StatusInternalServerError, "Failed to process bill", err)
		return
	}

	if c.PostForm("format") == "xlsx" {
		data, err := service.ExportBillXLSX(response)
		if err != nil {
			h.sendError(c, http.StatusInternalServerError, "Failed to export workbook", err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="bill-%s.xlsx"`, response.RunID))
		c.Data(http.StatusOK, xlsxContentType, data)
		return
	}

	h.log.Info().Str("run_id", response.RunID).Msg("Bill processed successfully")
	c.JSON(http.StatusOK, response)
}

// sendError sends a structured error response
func (h *BillHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	sendError(c, h.log, "BILL_FAILED", statusCode, message, err)
}

func sendError(c *gin.Context, log zerolog.Logger, code string, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Error().Err(err).Msg(message)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: errorMsg,
		Code:    statusCode,
	})
}

func isRequestError(err error) bool {
	return errors.Is(err, dto.ErrUnknownInsurer) ||
		errors.Is(err, dto.ErrUnknownTaxGroup) ||
		errors.Is(err, dto.ErrNoDocuments) ||
		errors.Is(err, dto.ErrInvalidDocument)
}

func readDocument(file *multipart.FileHeader, maxSize int64) (dto.Document, error) {
	if maxSize > 0 && file.Size > maxSize {
		return dto.Document{}, fmt.Errorf("%w: %s (%d bytes)", errFileTooLarge, file.Filename, file.Size)
	}

	reader, err := file.Open()
	if err != nil {
		return dto.Document{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return dto.Document{}, fmt.Errorf("failed to read file: %w", err)
	}
	return dto.Document{Name: file.Filename, Data: data}, nil
}
