package service

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billgen/cfdi-bill-generator/dto"
	"github.com/billgen/cfdi-bill-generator/utils"
)

func newTestBillingService(t *testing.T, pdf PDFProcessor, ocr OCRClient) *BillingService {
	t.Helper()
	return NewBillingService(testConfig(t), pdf, ocr, nopLogger())
}

func TestAccumulatePagesMultiPage(t *testing.T) {
	pdf := &fakePDF{docs: map[string][]string{
		"stmt": {"IMPORTE :1,000.00", "I.V.A. :160.00", "nothing here"},
	}}
	svc := newTestBillingService(t, pdf, nil)

	src, err := NewPDFPageSource(pdf, []byte("stmt"), "", 3, nil, nopLogger())
	require.NoError(t, err)

	totals, pages, issues := svc.AccumulatePages(context.Background(), src, utils.QualitasSchema, nil)

	assert.Equal(t, 2, pages)
	assert.Empty(t, issues)
	assert.True(t, dec("1000").Equal(totals.Get(dto.KeyImport)))
	assert.True(t, dec("160").Equal(totals.Get(dto.KeyIVA)))
	assert.Len(t, totals, len(utils.QualitasSchema.Fields))
}

func TestAccumulatePagesStopsAtEmptyPage(t *testing.T) {
	pdf := &fakePDF{docs: map[string][]string{
		"stmt": {"IMPORTE :1,000.00", "IMPORTE :500.00", "", "IMPORTE :9,999.00"},
	}}
	svc := newTestBillingService(t, pdf, nil)

	src, err := NewPDFPageSource(pdf, []byte("stmt"), "", 10, nil, nopLogger())
	require.NoError(t, err)

	totals, pages, _ := svc.AccumulatePages(context.Background(), src, utils.QualitasSchema, nil)

	assert.Equal(t, 2, pages)
	assert.Equal(t, 3, pdf.textCalls)
	assert.True(t, dec("1500").Equal(totals.Get(dto.KeyImport)))
}

func TestAccumulatePagesRespectsPageLimit(t *testing.T) {
	pdf := &fakePDF{docs: map[string][]string{
		"stmt": {"IMPORTE :1.00", "IMPORTE :1.00", "IMPORTE :1.00", "IMPORTE :1.00"},
	}}
	svc := newTestBillingService(t, pdf, nil)

	src, err := NewPDFPageSource(pdf, []byte("stmt"), "", 3, nil, nopLogger())
	require.NoError(t, err)

	totals, pages, _ := svc.AccumulatePages(context.Background(), src, utils.QualitasSchema, nil)

	assert.Equal(t, 3, pages)
	assert.True(t, dec("3").Equal(totals.Get(dto.KeyImport)))
}

func TestAccumulatePagesReadErrorEndsDocument(t *testing.T) {
	pdf := &fakePDF{
		docs:       map[string][]string{"stmt": {"IMPORTE :1.00", "IMPORTE :2.00", "IMPORTE :4.00"}},
		pageErrors: map[int]error{2: errors.New("broken stream")},
	}
	svc := newTestBillingService(t, pdf, nil)

	src, err := NewPDFPageSource(pdf, []byte("stmt"), "", 3, nil, nopLogger())
	require.NoError(t, err)

	totals, pages, issues := svc.AccumulatePages(context.Background(), src, utils.QualitasSchema, nil)

	assert.Equal(t, 1, pages)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "broken stream")
	assert.True(t, dec("1").Equal(totals.Get(dto.KeyImport)))
}

func TestAccumulatePagesEmptyFirstPageSeedsTotals(t *testing.T) {
	svc := newTestBillingService(t, &fakePDF{}, nil)

	totals, pages, _ := svc.AccumulatePages(context.Background(), NewTextPageSource("no labels"), utils.AxaSchema, nil)

	assert.Equal(t, 0, pages)
	assert.Len(t, totals, len(utils.AxaSchema.Fields))
	for _, key := range utils.AxaSchema.Keys() {
		assert.True(t, totals.Get(key).IsZero())
	}
}

func TestAccumulatePagesInvalidInput(t *testing.T) {
	svc := newTestBillingService(t, &fakePDF{}, nil)

	text := "Vida : $5,000.00\xff\nI.S.R. : $\xfe150.00"
	totals, pages, issues := svc.AccumulatePages(context.Background(), NewTextPageSource(text), utils.AxaSchema, nil)

	assert.Equal(t, 1, pages)
	assert.True(t, dec("5000").Equal(totals.Get(dto.KeyLife)))
	assert.True(t, dec("150").Equal(totals.Get(dto.KeyISR)))
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "invalid UTF-8")
}

func TestAccumulatePagesOCRFallback(t *testing.T) {
	pdf := &fakePDF{
		docs:   map[string][]string{"scan": {"   "}},
		images: map[int][]image.Image{1: {image.NewGray(image.Rect(0, 0, 1, 1))}},
	}
	ocr := &fakeOCR{text: "IMPORTE :500.00"}
	svc := newTestBillingService(t, pdf, ocr)

	src, err := NewPDFPageSource(pdf, []byte("scan"), "", 3, ocr, nopLogger())
	require.NoError(t, err)

	totals, pages, _ := svc.AccumulatePages(context.Background(), src, utils.QualitasSchema, nil)

	assert.Equal(t, 1, pages)
	assert.Equal(t, 1, ocr.calls)
	assert.True(t, dec("500").Equal(totals.Get(dto.KeyImport)))
}

func TestProcessAxa(t *testing.T) {
	svc := newTestBillingService(t, &fakePDF{}, nil)
	portal := dec("16370.04")

	resp, err := svc.Process(context.Background(), &dto.BillRequest{
		Insurer:     dto.InsurerAxa,
		Period:      "Enero 2024",
		Documents:   []dto.Document{{Name: "Axa.txt", Data: []byte(axaExport)}},
		PortalTotal: &portal,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.RunID)
	assert.NotEmpty(t, resp.ProcessedAt)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, 1, resp.Documents[0].PagesRead)
	assert.Equal(t, "16370.00", resp.Report.Total.StringFixed(2))
	assert.Equal(t, "16370.00", resp.Draft.GrandTotal.StringFixed(2))
	assert.Len(t, resp.Draft.Concepts, 2)
	assert.Equal(t, "ASE931116231", resp.Draft.ReceiverRFC)
	require.NotNil(t, resp.Reconciliation)
	assert.True(t, resp.Reconciliation.Matched)
	assert.Empty(t, resp.Warnings)
}

func TestProcessPortalMismatchIsReported(t *testing.T) {
	svc := newTestBillingService(t, &fakePDF{}, nil)
	portal := dec("16371")

	resp, err := svc.Process(context.Background(), &dto.BillRequest{
		Insurer:     dto.InsurerAxa,
		Documents:   []dto.Document{{Name: "Axa.txt", Data: []byte(axaExport)}},
		PortalTotal: &portal,
	})
	require.NoError(t, err)

	assert.False(t, resp.Reconciliation.Matched)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "total mismatch")
}

func TestProcessQualitasSeveralStatements(t *testing.T) {
	pdf := &fakePDF{docs: map[string][]string{
		"a": {"IMPORTE :1,000.00 I.V.A. :160.00", "TOTAL :1,160.00 COMISIONES NETAS :953.33", ""},
		"b": {"IMPORTE :500.00", "", "IMPORTE :7.00"},
	}}
	svc := newTestBillingService(t, pdf, nil)

	resp, err := svc.Process(context.Background(), &dto.BillRequest{
		Insurer: dto.InsurerQualitas,
		Documents: []dto.Document{
			{Name: "a.pdf", Data: []byte("a")},
			{Name: "b.pdf", Data: []byte("b")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Documents[0].PagesRead)
	assert.Equal(t, 1, resp.Documents[1].PagesRead)
	assert.True(t, dec("1500").Equal(resp.Report.Totals.Get(dto.KeyImport)))
	assert.True(t, dec("1160").Equal(resp.Report.Total))
	assert.True(t, dec("953.33").Equal(resp.Draft.GrandTotal))
	assert.True(t, dec("1500").Equal(resp.Draft.Damage))
}

func TestProcessUnreadableDocumentIsAWarning(t *testing.T) {
	pdf := &fakePDF{docs: map[string][]string{"ok": {"IMPORTE :10.00"}}}
	svc := newTestBillingService(t, pdf, nil)

	resp, err := svc.Process(context.Background(), &dto.BillRequest{
		Insurer: dto.InsurerQualitas,
		Documents: []dto.Document{
			{Name: "broken.pdf", Data: []byte("broken")},
			{Name: "ok.pdf", Data: []byte("ok")},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Documents[0].Issues)
	assert.True(t, dec("10").Equal(resp.Report.Totals.Get(dto.KeyImport)))
	assert.Contains(t, resp.Warnings[0], "broken.pdf")
}

func TestProcessPasswordProtectedStatement(t *testing.T) {
	pdf := &fakePDF{docs: map[string][]string{"locked": {"IMPORTE :10.00"}}}
	svc := newTestBillingService(t, pdf, nil)

	resp, err := svc.Process(context.Background(), &dto.BillRequest{
		Insurer:   dto.InsurerQualitas,
		Password:  "secret",
		Documents: []dto.Document{{Name: "locked.pdf", Data: []byte("locked")}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"locked"}, pdf.decrypted)
	assert.Equal(t, 1, resp.Documents[0].PagesRead)
}

func TestProcessPotosiLife(t *testing.T) {
	export := "D_Subtotal : $2,000.00\nV_Subtotal : $1,000.00\nV_I.S.R. : $100.00\nV_I.V.A. : $0.00\nV_I.V.A. Ret. : $0.00\nV_Total : $900.00"
	svc := newTestBillingService(t, &fakePDF{}, nil)

	resp, err := svc.Process(context.Background(), &dto.BillRequest{
		Insurer:   dto.InsurerPotosi,
		TaxGroup:  dto.TaxGroupLife,
		Documents: []dto.Document{{Name: "SP.txt", Data: []byte(export)}},
	})
	require.NoError(t, err)

	assert.Equal(t, "life", resp.Report.TaxGroup)
	assert.True(t, dec("1000").Equal(resp.Draft.Life))
	assert.True(t, resp.Draft.Damage.IsZero())
	assert.Equal(t, "900.00", resp.Draft.GrandTotal.StringFixed(2))
	assert.Equal(t, "Al contado", resp.Draft.PaymentCondition)
}

func TestProcessRejectsInvalidRequests(t *testing.T) {
	svc := newTestBillingService(t, &fakePDF{}, nil)

	_, err := svc.Process(context.Background(), &dto.BillRequest{Insurer: dto.InsurerAxa})
	assert.ErrorIs(t, err, dto.ErrNoDocuments)

	_, err = svc.Process(context.Background(), &dto.BillRequest{
		Insurer:   dto.InsurerQualitas,
		Documents: []dto.Document{{Name: "q.txt", Data: []byte("x")}},
	})
	assert.Error(t, err)

	_, err = svc.Process(context.Background(), &dto.BillRequest{
		Insurer:   dto.InsurerAxa,
		TaxGroup:  dto.TaxGroupLife,
		Documents: []dto.Document{{Name: "Axa.txt", Data: []byte(axaExport)}},
	})
	assert.ErrorIs(t, err, dto.ErrUnknownTaxGroup)
}

func TestProcessCanceled(t *testing.T) {
	svc := newTestBillingService(t, &fakePDF{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Process(ctx, &dto.BillRequest{
		Insurer:   dto.InsurerAxa,
		Documents: []dto.Document{{Name: "Axa.txt", Data: []byte(axaExport)}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}
