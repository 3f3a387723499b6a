package service

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/billgen/cfdi-bill-generator/config"
)

const axaExport = `No Vida : $10,000.00
Vida : $5,000.00
I.S.R. : $150.00
IVA Retenido : $80.00
IVA Acreditado : $1,600.00
`

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	return cfg
}

// fakePDF serves pages keyed by the document bytes.
type fakePDF struct {
	docs       map[string][]string
	pageErrors map[int]error
	images     map[int][]image.Image
	countErr   error
	decrypted  []string
	textCalls  int
}

func (f *fakePDF) Decrypt(pdfData []byte, password string) ([]byte, error) {
	if password == "wrong" {
		return nil, ErrBadPassword
	}
	f.decrypted = append(f.decrypted, string(pdfData))
	return pdfData, nil
}

func (f *fakePDF) PageCount(pdfData []byte) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	pages, ok := f.docs[string(pdfData)]
	if !ok {
		return 0, errors.New("not a pdf")
	}
	return len(pages), nil
}

func (f *fakePDF) PageText(pdfData []byte, page int) (string, error) {
	f.textCalls++
	if err, ok := f.pageErrors[page]; ok {
		return "", err
	}
	return f.docs[string(pdfData)][page-1], nil
}

func (f *fakePDF) ExtractImages(pdfData []byte, password string) ([]image.Image, error) {
	var all []image.Image
	for _, imgs := range f.images {
		all = append(all, imgs...)
	}
	return all, nil
}

func (f *fakePDF) ExtractPageImages(pdfData []byte, page int) ([]image.Image, error) {
	return f.images[page], nil
}

type fakeOCR struct {
	text  string
	calls int
}

func (o *fakeOCR) ExtractTextFromImage(ctx context.Context, img image.Image) (string, error) {
	o.calls++
	return o.text, nil
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}
