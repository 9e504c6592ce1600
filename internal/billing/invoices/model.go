package invoices

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian/internal/billing/journals"
)

// Status represents the lifecycle of an invoice.
type Status string

const (
	StatusDraft     Status = "draft"     // editable, not yet approved
	StatusPosted    Status = "posted"    // approved, awaiting payment
	StatusPaid      Status = "paid"      // fully settled
	StatusCancelled Status = "cancelled" // voided
)

// CanEdit reports whether the invoice may still be modified.
func (s Status) CanEdit() bool {
	return s == StatusDraft || s == StatusPosted
}

// CanApprove reports whether the invoice may transition to posted.
func (s Status) CanApprove() bool {
	return s == StatusDraft
}

// Invoice is a sale or purchase financial document. Its number is allocated
// from the journal sequence at creation time and unique at the storage layer.
// Subtotal/Discount/TaxTotal/Total are always derived from the lines;
// PaidAmount is maintained by the payment ledger.
type Invoice struct {
	ID           int64                 `json:"id"`
	CompanyID    int64                 `json:"company_id"`
	BranchID     *int64                `json:"branch_id,omitempty"`
	FiscalYearID *int64                `json:"fiscal_year_id,omitempty"`
	JournalID    int64                 `json:"journal_id"`
	Number       string                `json:"invoice_number"`
	Type         journals.DocumentType `json:"invoice_type"`
	PartnerID    *int64                `json:"partner_id,omitempty"`
	CurrencyID   int64                 `json:"currency_id"`
	ExchangeRate decimal.Decimal       `json:"exchange_rate"`
	InvoiceDate  time.Time             `json:"invoice_date"`
	DueDate      *time.Time            `json:"due_date,omitempty"`
	Status       Status                `json:"status"`
	Subtotal     decimal.Decimal       `json:"subtotal"`
	Discount     decimal.Decimal       `json:"discount"`
	TaxTotal     decimal.Decimal       `json:"tax_total"`
	Total        decimal.Decimal       `json:"total"`
	PaidAmount   decimal.Decimal       `json:"paid_amount"`
	Notes        *string               `json:"notes,omitempty"`
	ApprovedBy   *int64                `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time            `json:"approved_at,omitempty"`
	CreatedBy    int64                 `json:"created_by"`
	UpdatedBy    *int64                `json:"updated_by,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`

	Lines    []Line       `json:"lines,omitempty"`
	Payments []PaymentRow `json:"payments,omitempty"`
	TaxLines []TaxRow     `json:"tax_lines,omitempty"`
}

// Line is one item row belonging to exactly one invoice.
type Line struct {
	ID             int64           `json:"id"`
	InvoiceID      int64           `json:"invoice_id"`
	Description    string          `json:"description"`
	UnitID         *int64          `json:"unit_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountPct    decimal.Decimal `json:"discount_pct"`
	TaxPct         decimal.Decimal `json:"tax_pct"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
	LineOrder      int             `json:"line_order"`
}

// PaymentRow is the payment projection eager-loaded with an invoice.
type PaymentRow struct {
	ID          int64           `json:"id"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      string          `json:"payment_method"`
}

// TaxRow is the tax-line projection eager-loaded with an invoice.
type TaxRow struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// AllocatedNumber is the result of a journal sequence allocation.
type AllocatedNumber struct {
	JournalCode string
	JournalType journals.DocumentType
	Sequence    int64
}
