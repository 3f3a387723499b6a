package utils

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/billgen/cfdi-bill-generator/dto"
)

// ParseCFDIQR extracts the verification fields from the text of a CFDI QR
// code. Both the CFDI 3.3/4.0 URL form and the bare CFDI 3.2 query string
// ("?re=...&rr=...&tt=...&id=...") are accepted.
func ParseCFDIQR(text string) (dto.CFDIQRData, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(text, "&amp;", "&"))
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[i+1:]
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return dto.CFDIQRData{}, fmt.Errorf("failed to parse CFDI QR query: %w", err)
	}

	data := dto.CFDIQRData{
		UUID:        strings.ToUpper(values.Get("id")),
		IssuerRFC:   strings.ToUpper(values.Get("re")),
		ReceiverRFC: strings.ToUpper(values.Get("rr")),
		SealTail:    values.Get("fe"),
	}
	if data.UUID == "" || data.IssuerRFC == "" || data.ReceiverRFC == "" {
		return dto.CFDIQRData{}, fmt.Errorf("QR text is not a CFDI verification code")
	}

	tt := values.Get("tt")
	if tt == "" {
		return dto.CFDIQRData{}, fmt.Errorf("CFDI QR has no total")
	}
	total, err := ParseAmount(tt)
	if err != nil {
		return dto.CFDIQRData{}, fmt.Errorf("invalid CFDI total: %w", err)
	}
	data.Total = total

	return data, nil
}
