package dto

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CFDIQRData holds the query parameters of the SAT verification URL printed
// as a QR code on every stamped CFDI.
//
//	https://verificacfdi.facturaelectronica.sat.gob.mx/default.aspx?id=<uuid>&re=<rfc>&rr=<rfc>&tt=<total>&fe=<seal tail>
type CFDIQRData struct {
	UUID        string          `json:"uuid" yaml:"uuid"`
	IssuerRFC   string          `json:"issuer_rfc" yaml:"issuer_rfc"`
	ReceiverRFC string          `json:"receiver_rfc" yaml:"receiver_rfc"`
	Total       decimal.Decimal `json:"total" yaml:"total"`
	SealTail    string          `json:"seal_tail,omitempty" yaml:"seal_tail,omitempty"`
}

// RFCFromLabel returns the RFC part of a portal receiver label such as
// "ASE931116231 AXA SEGUROS SA DE CV".
func RFCFromLabel(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// MatchesReceiver reports whether the CFDI was issued to the given RFC.
func (q *CFDIQRData) MatchesReceiver(rfc string) bool {
	return rfc != "" && strings.EqualFold(q.ReceiverRFC, RFCFromLabel(rfc))
}
