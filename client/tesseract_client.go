package client

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"
)

// TesseractClient runs OCR on page images of scanned statements and CFDIs.
type TesseractClient struct {
	dataPath string
	language string
	log      zerolog.Logger
}

func NewTesseractClient(dataPath string, log zerolog.Logger) *TesseractClient {
	return &TesseractClient{
		dataPath: dataPath,
		language: "spa",
		log:      log,
	}
}

// ExtractTextFromImage encodes img as PNG and returns the recognised text.
func (tc *TesseractClient) ExtractTextFromImage(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	text, conf, err := tc.ExtractTextAndQuality(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("OCR extraction failed: %w", err)
	}
	tc.log.Debug().Float64("confidence", conf).Int("chars", len(text)).Msg("page OCR finished")
	return text, nil
}

// ExtractTextAndQuality returns the text of an encoded image and the mean
// word confidence reported by tesseract.
func (tc *TesseractClient) ExtractTextAndQuality(imageData []byte) (string, float64, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if tc.dataPath != "" {
		if err := client.SetTessdataPrefix(tc.dataPath); err != nil {
			return "", 0, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(tc.language); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(imageData); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// If bounding boxes fail, just return text and 0 confidence
		return text, 0, nil
	}

	var totalConf float64
	for _, box := range boxes {
		totalConf += box.Confidence
	}

	avgConf := 0.0
	if len(boxes) > 0 {
		avgConf = totalConf / float64(len(boxes))
	}

	return text, avgConf, nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	tc.log.Debug().Msg("Tesseract client closed")
}
