// Package shared holds billing-wide errors and money calculations.
package shared

import "errors"

var (
	ErrJournalNotFound  = errors.New("journal not found")
	ErrJournalClosed    = errors.New("journal is closed")
	ErrJournalExhausted = errors.New("journal document capacity reached")
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrPaymentNotFound  = errors.New("invoice payment not found")
	ErrTaxLineNotFound  = errors.New("invoice tax line not found")
	ErrInvalidStatus    = errors.New("invalid status for this operation")
	ErrTypeMismatch     = errors.New("journal type does not match invoice type")
	ErrOverpayment      = errors.New("payment exceeds invoice balance")
	ErrDuplicateNumber  = errors.New("invoice number already exists")
	ErrDuplicateRef     = errors.New("payment reference already exists")
	ErrDuplicateCode    = errors.New("journal code already exists")
	ErrFiscalYearClosed = errors.New("fiscal year is closed")
	ErrNoLines          = errors.New("invoice requires at least one line")
)
