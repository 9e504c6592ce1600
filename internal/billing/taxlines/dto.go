package taxlines

type CreateTaxLineRequest struct {
	InvoiceID int64   `json:"invoice_id" validate:"required,gt=0"`
	TaxID     *int64  `json:"tax_id,omitempty" validate:"omitempty,gt=0"`
	Name      string  `json:"name" validate:"required,max=100"`
	Rate      float64 `json:"rate" validate:"gte=0,lte=100"`
	Amount    float64 `json:"amount" validate:"gte=0"`
}

type UpdateTaxLineRequest struct {
	Name   *string  `json:"name,omitempty" validate:"omitempty,max=100"`
	Rate   *float64 `json:"rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	Amount *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
}

type ListTaxLinesRequest struct {
	CompanyID int64
	InvoiceID int64
	Page      int
	PerPage   int
}
