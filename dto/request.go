package dto

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNoDocuments     = errors.New("at least one document is required")
	ErrInvalidDocument = errors.New("invalid document")
)

// Document is one source file of a bill: a text export or a PDF statement.
type Document struct {
	Name string
	Data []byte
}

// IsPDF reports whether the document should be read page by page.
func (d Document) IsPDF() bool {
	return strings.EqualFold(filepath.Ext(d.Name), ".pdf")
}

// BillRequest describes one invoice run.
type BillRequest struct {
	Insurer   Insurer
	TaxGroup  TaxGroup
	Period    string
	Password  string
	Documents []Document
	// PortalTotal, when set, is reconciled against the expected grand total.
	PortalTotal *decimal.Decimal
}

// Validate performs basic validation on the request
func (r *BillRequest) Validate() error {
	if _, ok := insurerIDs[r.Insurer]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownInsurer, int(r.Insurer))
	}
	if len(r.Documents) == 0 {
		return ErrNoDocuments
	}
	if r.TaxGroup != TaxGroupNone && !r.Insurer.HasTaxGroups() {
		return fmt.Errorf("%w: %s does not split bills by tax group", ErrUnknownTaxGroup, r.Insurer)
	}
	for _, doc := range r.Documents {
		if r.Insurer.ReadsPDF() != doc.IsPDF() {
			if r.Insurer.ReadsPDF() {
				return fmt.Errorf("%w: %s statements must be PDF files, got %s", ErrInvalidDocument, r.Insurer, doc.Name)
			}
			return fmt.Errorf("%w: %s exports must be text files, got %s", ErrInvalidDocument, r.Insurer, doc.Name)
		}
	}
	return nil
}

// CFDIVerifyRequest asks for the QR of a stamped CFDI to be checked.
type CFDIVerifyRequest struct {
	Insurer       Insurer
	Document      Document
	MimeType      string
	Password      string
	ExpectedTotal decimal.Decimal
}

// Validate checks the uploaded file type.
func (r *CFDIVerifyRequest) Validate() error {
	if _, ok := insurerIDs[r.Insurer]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownInsurer, int(r.Insurer))
	}
	if len(r.Document.Data) == 0 {
		return ErrNoDocuments
	}

	filename := strings.ToLower(r.Document.Name)
	validExtensions := []string{".pdf", ".png", ".jpg", ".jpeg"}
	for _, ext := range validExtensions {
		if strings.HasSuffix(filename, ext) {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid file type. Supported: PDF, PNG, JPG", ErrInvalidDocument)
}
