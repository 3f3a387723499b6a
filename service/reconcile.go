package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/billgen/cfdi-bill-generator/dto"
)

var ErrTotalMismatch = errors.New("total mismatch")

// MismatchError reports a grand total outside the accepted tolerance.
type MismatchError struct {
	Expected  decimal.Decimal
	Portal    decimal.Decimal
	Tolerance decimal.Decimal
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, portal shows %s (difference %s, tolerance %s)",
		ErrTotalMismatch, e.Expected.StringFixed(2), e.Portal.StringFixed(2),
		e.Expected.Sub(e.Portal).Abs().StringFixed(2), e.Tolerance.String())
}

func (e *MismatchError) Unwrap() error {
	return ErrTotalMismatch
}

// Reconcile accepts the portal total when it is within tolerance of the
// expected one.
func Reconcile(expected, portal, tolerance decimal.Decimal) error {
	if expected.Sub(portal).Abs().LessThanOrEqual(tolerance) {
		return nil
	}
	return &MismatchError{Expected: expected, Portal: portal, Tolerance: tolerance}
}

// NewReconciliation runs Reconcile and records its outcome.
func NewReconciliation(expected, portal, tolerance decimal.Decimal) dto.Reconciliation {
	rec := dto.Reconciliation{
		Expected:  expected,
		Portal:    portal,
		Tolerance: tolerance,
		Matched:   true,
	}
	if err := Reconcile(expected, portal, tolerance); err != nil {
		rec.Matched = false
		rec.Message = err.Error()
	}
	return rec
}
