package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrBadPassword is returned when a PDF cannot be opened with the given
// password.
var ErrBadPassword = errors.New("wrong PDF password")

// PDFProcessor reads statement PDFs page by page.
type PDFProcessor interface {
	// Decrypt returns an unencrypted copy of a password protected PDF. A file
	// that is not encrypted comes back unchanged.
	Decrypt(pdfData []byte, password string) ([]byte, error)
	PageCount(pdfData []byte) (int, error)
	// PageText returns the text layer of one page, 1-based.
	PageText(pdfData []byte, page int) (string, error)
	ExtractImages(pdfData []byte, password string) ([]image.Image, error)
	ExtractPageImages(pdfData []byte, page int) ([]image.Image, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

func newConfiguration(password string) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}
	return conf
}

// wrapPDFError marks pdfcpu's password rejection with ErrBadPassword.
func wrapPDFError(msg string, err error) error {
	if errors.Is(err, pdfcpu.ErrWrongPassword) {
		return fmt.Errorf("%s: %w: %w", msg, ErrBadPassword, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (p *pdfProcessor) Decrypt(pdfData []byte, password string) ([]byte, error) {
	ctx, err := api.ReadContext(bytes.NewReader(pdfData), newConfiguration(password))
	if err != nil {
		return nil, wrapPDFError("failed to open pdf", err)
	}
	// pdfcpu refuses to decrypt a plain file.
	if ctx.Encrypt == nil {
		return pdfData, nil
	}

	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(pdfData), &out, newConfiguration(password)); err != nil {
		return nil, wrapPDFError("failed to decrypt pdf", err)
	}
	return out.Bytes(), nil
}

func (p *pdfProcessor) PageCount(pdfData []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(pdfData), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}

func (p *pdfProcessor) PageText(pdfData []byte, page int) (text string, err error) {
	// The text extractor panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read page %d: %v", page, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	if page < 1 || page > r.NumPage() {
		return "", fmt.Errorf("page %d out of range (1-%d)", page, r.NumPage())
	}

	pg := r.Page(page)
	if pg.V.IsNull() {
		return "", nil
	}
	return pageRowsText(pg)
}

// pageRowsText joins the words of each row with a space and the rows with
// a newline, which keeps "LABEL :amount" pairs on one line.
func pageRowsText(pg pdf.Page) (string, error) {
	rows, err := pg.GetTextByRow()
	if err != nil {
		return "", fmt.Errorf("failed to read text rows: %w", err)
	}

	var sb strings.Builder
	for _, row := range rows {
		words := make([]string, 0, len(row.Content))
		for _, word := range row.Content {
			words = append(words, word.S)
		}
		sb.WriteString(strings.Join(words, " "))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (p *pdfProcessor) ExtractImages(pdfData []byte, password string) ([]image.Image, error) {
	return p.extractImages(pdfData, nil, newConfiguration(password))
}

func (p *pdfProcessor) ExtractPageImages(pdfData []byte, page int) ([]image.Image, error) {
	return p.extractImages(pdfData, []string{strconv.Itoa(page)}, newConfiguration(""))
}

func (p *pdfProcessor) extractImages(pdfData []byte, selectedPages []string, conf *model.Configuration) ([]image.Image, error) {
	tempDir, err := os.MkdirTemp("", "pdf_images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempFile, err := os.CreateTemp("", "doc-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(pdfData); err != nil {
		tempFile.Close()
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}
	tempFile.Close()

	if err := api.ExtractImagesFile(tempFile.Name(), tempDir, selectedPages, conf); err != nil {
		return nil, wrapPDFError("failed to extract images", err)
	}

	files, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	var images []image.Image
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		imgFile, err := os.Open(filepath.Join(tempDir, file.Name()))
		if err != nil {
			continue
		}
		img, _, err := image.Decode(imgFile)
		imgFile.Close()
		if err != nil {
			continue
		}
		images = append(images, img)
	}

	return images, nil
}
