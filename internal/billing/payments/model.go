package payments

import (
	"time"

	"github.com/shopspring/decimal"
)

// Method enumerates accepted payment methods.
type Method string

const (
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
	MethodCard     Method = "card"
	MethodCheque   Method = "cheque"
)

// Payment settles part or all of one invoice. Reference is unique per
// company; one is generated when the caller does not supply it.
type Payment struct {
	ID          int64           `json:"id"`
	CompanyID   int64           `json:"company_id"`
	InvoiceID   int64           `json:"invoice_id"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      Method          `json:"payment_method"`
	AccountID   *int64          `json:"account_id,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedBy   int64           `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
