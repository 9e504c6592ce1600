package payments

import "time"

type CreatePaymentRequest struct {
	InvoiceID   int64     `json:"invoice_id" validate:"required,gt=0"`
	Reference   string    `json:"reference" validate:"omitempty,max=100"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	PaymentDate time.Time `json:"payment_date" validate:"required"`
	Method      string    `json:"payment_method" validate:"required,oneof=cash transfer card cheque"`
	AccountID   *int64    `json:"account_id,omitempty" validate:"omitempty,gt=0"`
	Notes       *string   `json:"notes,omitempty"`
}

type UpdatePaymentRequest struct {
	Amount      *float64   `json:"amount,omitempty" validate:"omitempty,gt=0"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
	Method      *string    `json:"payment_method,omitempty" validate:"omitempty,oneof=cash transfer card cheque"`
	AccountID   *int64     `json:"account_id,omitempty" validate:"omitempty,gt=0"`
	Notes       *string    `json:"notes,omitempty"`
}

type ListPaymentsRequest struct {
	CompanyID int64
	InvoiceID int64
	Page      int
	PerPage   int
}
