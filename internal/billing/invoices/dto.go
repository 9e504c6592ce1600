package invoices

import "time"

type LineInput struct {
	Description string  `json:"description" validate:"required,max=500"`
	UnitID      *int64  `json:"unit_id,omitempty" validate:"omitempty,gt=0"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	DiscountPct float64 `json:"discount_pct" validate:"gte=0,lte=100"`
	TaxPct      float64 `json:"tax_pct" validate:"gte=0,lte=100"`
}

type CreateInvoiceRequest struct {
	JournalID    int64       `json:"journal_id" validate:"required,gt=0"`
	Type         string      `json:"invoice_type" validate:"required,oneof=sale purchase"`
	PartnerID    *int64      `json:"partner_id,omitempty" validate:"omitempty,gt=0"`
	CurrencyID   int64       `json:"currency_id" validate:"required,gt=0"`
	ExchangeRate float64     `json:"exchange_rate" validate:"required,gt=0"`
	InvoiceDate  time.Time   `json:"invoice_date" validate:"required"`
	DueDate      *time.Time  `json:"due_date,omitempty"`
	Notes        *string     `json:"notes,omitempty"`
	Lines        []LineInput `json:"lines" validate:"required,min=1,dive"`
}

type UpdateInvoiceRequest struct {
	PartnerID    *int64       `json:"partner_id,omitempty" validate:"omitempty,gt=0"`
	CurrencyID   *int64       `json:"currency_id,omitempty" validate:"omitempty,gt=0"`
	ExchangeRate *float64     `json:"exchange_rate,omitempty" validate:"omitempty,gt=0"`
	InvoiceDate  *time.Time   `json:"invoice_date,omitempty"`
	DueDate      *time.Time   `json:"due_date,omitempty"`
	Notes        *string      `json:"notes,omitempty"`
	Lines        *[]LineInput `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

type ListInvoicesRequest struct {
	CompanyID int64
	JournalID int64
	Status    string
	Type      string
	Search    string
	Page      int
	PerPage   int
}
