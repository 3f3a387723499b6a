package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"regexp"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/rs/zerolog"

	"github.com/billgen/cfdi-bill-generator/config"
	"github.com/billgen/cfdi-bill-generator/dto"
	"github.com/billgen/cfdi-bill-generator/utils"
)

var (
	ErrNoQRCode         = errors.New("no CFDI verification QR code found")
	ErrReceiverMismatch = errors.New("CFDI receiver does not match insurer")
)

// verificationQuery finds a printed SAT verification query in OCR text.
var verificationQuery = regexp.MustCompile(`\?\S*re=\S+`)

// CFDIService checks a stamped CFDI against the bill it was issued for.
type CFDIService struct {
	cfg          *config.Config
	pdfProcessor PDFProcessor
	ocrClient    OCRClient
	log          zerolog.Logger
}

// NewCFDIService creates a new CFDIService instance. ocrClient may be nil.
func NewCFDIService(cfg *config.Config, pdfProcessor PDFProcessor, ocrClient OCRClient, log zerolog.Logger) *CFDIService {
	return &CFDIService{
		cfg:          cfg,
		pdfProcessor: pdfProcessor,
		ocrClient:    ocrClient,
		log:          log,
	}
}

// VerifyFile reads the verification QR of a stamped CFDI (PDF or image),
// checks the receiver RFC and reconciles the stamped total with
// req.ExpectedTotal. When the QR is found the response is always returned;
// the error then wraps ErrReceiverMismatch and/or ErrTotalMismatch.
func (s *CFDIService) VerifyFile(ctx context.Context, req *dto.CFDIVerifyRequest) (*dto.CFDIVerifyResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	profile, err := s.cfg.Profile(req.Insurer)
	if err != nil {
		return nil, err
	}

	var images []image.Image
	if strings.Contains(req.MimeType, "pdf") || req.Document.IsPDF() {
		s.log.Debug().Str("document", req.Document.Name).Msg("Processing PDF file for CFDI verification")
		images, err = s.pdfProcessor.ExtractImages(req.Document.Data, req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
		}
	} else {
		img, err := decodeImage(req.Document.Data, req.MimeType)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		images = []image.Image{img}
	}

	qr, err := s.findQR(ctx, images)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("uuid", qr.UUID).Str("receiver", qr.ReceiverRFC).Msg("CFDI QR decoded")

	resp := &dto.CFDIVerifyResponse{
		QR:             qr,
		ReceiverMatch:  qr.MatchesReceiver(profile.RFC),
		Reconciliation: NewReconciliation(req.ExpectedTotal, qr.Total, s.cfg.Tolerance()),
	}

	var errs []error
	if !resp.ReceiverMatch {
		errs = append(errs, fmt.Errorf("%w: stamped for %s, expected %s", ErrReceiverMismatch, qr.ReceiverRFC, profile.RFC))
	}
	if err := Reconcile(req.ExpectedTotal, qr.Total, s.cfg.Tolerance()); err != nil {
		errs = append(errs, err)
	}
	return resp, errors.Join(errs...)
}

// findQR tries every image for a verification QR code and falls back to
// OCR of the printed verification string.
func (s *CFDIService) findQR(ctx context.Context, images []image.Image) (dto.CFDIQRData, error) {
	for idx, img := range images {
		if err := ctx.Err(); err != nil {
			return dto.CFDIQRData{}, err
		}
		text, err := decodeQR(img)
		if err != nil {
			s.log.Debug().Err(err).Int("image", idx+1).Msg("no QR code in image")
			continue
		}
		data, err := utils.ParseCFDIQR(text)
		if err != nil {
			s.log.Debug().Err(err).Int("image", idx+1).Msg("QR code is not a CFDI verification code")
			continue
		}
		return data, nil
	}

	if s.ocrClient != nil {
		for _, img := range images {
			text, err := s.ocrClient.ExtractTextFromImage(ctx, img)
			if err != nil {
				continue
			}
			if m := verificationQuery.FindString(text); m != "" {
				if data, err := utils.ParseCFDIQR(m); err == nil {
					return data, nil
				}
			}
		}
	}

	return dto.CFDIQRData{}, ErrNoQRCode
}

func decodeQR(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("failed to decode QR code: %w", err)
	}
	return result.GetText(), nil
}

func decodeImage(data []byte, mimeType string) (image.Image, error) {
	reader := bytes.NewReader(data)

	if strings.Contains(mimeType, "png") {
		return png.Decode(reader)
	} else if strings.Contains(mimeType, "jpeg") || strings.Contains(mimeType, "jpg") {
		return jpeg.Decode(reader)
	}

	img, _, err := image.Decode(reader)
	return img, err
}
