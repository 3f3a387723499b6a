package service

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/rs/zerolog"
)

// PageSource yields the text of a document one page at a time.
type PageSource interface {
	// NextPage returns the next page's text. ok is false once no page
	// remains.
	NextPage(ctx context.Context) (text string, ok bool, err error)
}

// OCRClient turns a page image into text.
type OCRClient interface {
	ExtractTextFromImage(ctx context.Context, img image.Image) (string, error)
}

// TextPageSource serves a plain-text export as a single page.
type TextPageSource struct {
	text string
	done bool
}

func NewTextPageSource(text string) *TextPageSource {
	return &TextPageSource{text: text}
}

func (s *TextPageSource) NextPage(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if s.done {
		return "", false, nil
	}
	s.done = true
	return s.text, true, nil
}

// PDFPageSource serves the pages of one statement PDF in order, up to a
// page limit.
type PDFPageSource struct {
	processor PDFProcessor
	ocr       OCRClient
	data      []byte
	lastPage  int
	next      int
	log       zerolog.Logger
}

// NewPDFPageSource opens a statement. With a non-empty password an encrypted
// file is decrypted first; a plain one is read as is. ocr may be nil, in
// which case pages without a text layer come back empty.
func NewPDFPageSource(processor PDFProcessor, data []byte, password string, maxPages int, ocr OCRClient, log zerolog.Logger) (*PDFPageSource, error) {
	if password != "" {
		decrypted, err := processor.Decrypt(data, password)
		if err != nil {
			return nil, err
		}
		data = decrypted
	}

	count, err := processor.PageCount(data)
	if err != nil {
		return nil, err
	}

	lastPage := count
	if maxPages > 0 && maxPages < lastPage {
		lastPage = maxPages
	}

	return &PDFPageSource{
		processor: processor,
		ocr:       ocr,
		data:      data,
		lastPage:  lastPage,
		next:      1,
		log:       log,
	}, nil
}

func (s *PDFPageSource) NextPage(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if s.next > s.lastPage {
		return "", false, nil
	}

	page := s.next
	s.next++

	text, err := s.processor.PageText(s.data, page)
	if err != nil {
		return "", true, fmt.Errorf("page %d: %w", page, err)
	}

	if strings.TrimSpace(text) == "" && s.ocr != nil {
		s.log.Debug().Int("page", page).Msg("page has no text layer, running OCR")
		text, err = s.ocrPage(ctx, page)
		if err != nil {
			return "", true, fmt.Errorf("page %d: %w", page, err)
		}
	}

	return text, true, nil
}

func (s *PDFPageSource) ocrPage(ctx context.Context, page int) (string, error) {
	images, err := s.processor.ExtractPageImages(s.data, page)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for idx, img := range images {
		pageText, err := s.ocr.ExtractTextFromImage(ctx, img)
		if err != nil {
			s.log.Warn().Err(err).Int("page", page).Int("image", idx+1).Msg("OCR failed for page image")
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
