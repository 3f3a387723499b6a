package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/billgen/cfdi-bill-generator/config"
	"github.com/billgen/cfdi-bill-generator/dto"
	"github.com/billgen/cfdi-bill-generator/utils"
)

// BillingService turns the statements of one insurer into a tax report and
// an invoice draft.
type BillingService struct {
	cfg          *config.Config
	pdfProcessor PDFProcessor
	ocrClient    OCRClient
	calculator   *TaxCalculator
	log          zerolog.Logger
}

// NewBillingService wires the service. ocrClient is only used when
// cfg.OCRFallback is set and may be nil otherwise.
func NewBillingService(cfg *config.Config, pdfProcessor PDFProcessor, ocrClient OCRClient, log zerolog.Logger) *BillingService {
	return &BillingService{
		cfg:          cfg,
		pdfProcessor: pdfProcessor,
		ocrClient:    ocrClient,
		calculator:   NewTaxCalculator(),
		log:          log,
	}
}

// AccumulatePages scans src page by page into acc. The first page without
// any schema label ends the document, and so does a page that cannot be
// read. It returns the new accumulator, the number of pages that
// contributed and the problems met on the way.
func (s *BillingService) AccumulatePages(ctx context.Context, src PageSource, schema utils.FieldSchema, acc dto.Totals) (dto.Totals, int, []string) {
	acc = utils.Accumulate(utils.RawMatchSet{}, schema, acc)

	var issues []string
	pages := 0
	for {
		text, ok, err := src.NextPage(ctx)
		if err != nil {
			s.log.Warn().Err(err).Int("page", pages+1).Msg("failed to read page, ending document")
			issues = append(issues, err.Error())
			break
		}
		if !ok {
			break
		}

		if !utf8.ValidString(text) {
			s.log.Warn().Int("page", pages+1).Msg("page text is not valid UTF-8, dropping invalid bytes")
			issues = append(issues, fmt.Sprintf("page %d: invalid UTF-8 removed", pages+1))
			text = strings.ToValidUTF8(text, "")
		}

		matches := utils.ScanFields(text, schema)
		if len(matches) == 0 {
			s.log.Debug().Int("page", pages+1).Msg("no fields on page, end of document")
			break
		}

		var invalid []string
		acc, invalid = utils.AccumulateWithIssues(matches, schema, acc)
		for _, label := range invalid {
			s.log.Warn().Str("label", label).Str("value", matches[label]).Msg("unparsable amount, counted as zero")
			issues = append(issues, fmt.Sprintf("page %d: invalid amount %q for %s", pages+1, matches[label], label))
		}

		pages++
		s.log.Debug().Int("page", pages).Int("fields", len(matches)).Msg("page accumulated")
	}

	return acc, pages, issues
}

func (s *BillingService) pageSource(doc dto.Document, password string) (PageSource, error) {
	if !doc.IsPDF() {
		return NewTextPageSource(string(doc.Data)), nil
	}

	var ocr OCRClient
	if s.cfg.OCRFallback {
		ocr = s.ocrClient
	}
	src, err := NewPDFPageSource(s.pdfProcessor, doc.Data, password, s.cfg.MaxStatementPages, ocr, s.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", doc.Name, err)
	}
	return src, nil
}

// Process runs one bill: every document is accumulated in order, then the
// report, the draft and the optional reconciliation are derived. Only an
// invalid request is an error; document problems become warnings.
func (s *BillingService) Process(ctx context.Context, req *dto.BillRequest) (*dto.BillResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	profile, err := s.cfg.Profile(req.Insurer)
	if err != nil {
		return nil, err
	}

	group := req.TaxGroup
	if req.Insurer.HasTaxGroups() && group == dto.TaxGroupNone {
		group = dto.TaxGroupDamage
	}
	schema, err := utils.SchemaFor(req.Insurer, group)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Str("insurer", req.Insurer.ID()).Logger()
	log.Info().Int("documents", len(req.Documents)).Str("schema", schema.Name).Msg("Processing documents")
	started := time.Now()

	resp := &dto.BillResponse{
		RunID:     runID,
		Documents: make([]dto.DocumentResult, 0, len(req.Documents)),
	}

	worker := *s
	worker.log = log

	acc := utils.NewTotals(schema)
	for _, doc := range req.Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := dto.DocumentResult{Name: doc.Name}
		src, err := worker.pageSource(doc, req.Password)
		if err != nil {
			log.Error().Err(err).Str("document", doc.Name).Msg("failed to open document")
			result.Issues = append(result.Issues, err.Error())
			resp.Warnings = append(resp.Warnings, err.Error())
			resp.Documents = append(resp.Documents, result)
			continue
		}

		var issues []string
		acc, result.PagesRead, issues = worker.AccumulatePages(ctx, src, schema, acc)
		result.Issues = append(result.Issues, issues...)
		if result.PagesRead == 0 {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("no %s fields found in %s", req.Insurer, doc.Name))
		}
		log.Info().Str("document", doc.Name).Int("pages", result.PagesRead).Msg("document accumulated")
		resp.Documents = append(resp.Documents, result)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report, err := s.calculator.Report(req.Insurer, group, acc)
	if err != nil {
		return nil, err
	}
	resp.Report = report

	draft, warnings := BuildInvoiceDraft(report, DraftOptions{
		Insurer:  req.Insurer,
		TaxGroup: group,
		Period:   req.Period,
		CFDIUse:  s.cfg.CFDIUse,
		Profile:  profile,
	})
	resp.Draft = draft
	resp.Warnings = append(resp.Warnings, warnings...)

	if req.PortalTotal != nil {
		rec := NewReconciliation(draft.GrandTotal, *req.PortalTotal, s.cfg.Tolerance())
		if !rec.Matched {
			log.Warn().Str("expected", rec.Expected.StringFixed(2)).Str("portal", rec.Portal.StringFixed(2)).Msg("portal total does not match")
			resp.Warnings = append(resp.Warnings, rec.Message)
		}
		resp.Reconciliation = &rec
	}

	resp.ProcessedAt = time.Now().Format(time.RFC3339)
	log.Info().
		Str("total", report.Total.StringFixed(2)).
		Str("grand_total", draft.GrandTotal.StringFixed(2)).
		Dur("elapsed", time.Since(started)).
		Msg("bill processed")

	return resp, nil
}
