package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// DocumentResult records how one source document contributed to the bill.
type DocumentResult struct {
	Name      string   `json:"name" yaml:"name"`
	PagesRead int      `json:"pages_read" yaml:"pages_read"`
	Issues    []string `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// BillResponse is the final response structure
type BillResponse struct {
	RunID          string           `json:"run_id" yaml:"run_id"`
	Documents      []DocumentResult `json:"documents" yaml:"documents"`
	Report         TaxReport        `json:"report" yaml:"report"`
	Draft          InvoiceDraft     `json:"draft" yaml:"draft"`
	Reconciliation *Reconciliation  `json:"reconciliation,omitempty" yaml:"reconciliation,omitempty"`
	Warnings       []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	ProcessedAt    string           `json:"processed_at" yaml:"processed_at"`
}

// CFDIVerifyResponse is returned after checking a stamped CFDI.
type CFDIVerifyResponse struct {
	QR             CFDIQRData     `json:"qr" yaml:"qr"`
	ReceiverMatch  bool           `json:"receiver_match" yaml:"receiver_match"`
	Reconciliation Reconciliation `json:"reconciliation" yaml:"reconciliation"`
}
