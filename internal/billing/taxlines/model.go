package taxlines

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxLine is a named tax amount attached to an invoice. The lines are
// bookkeeping detail; the invoice tax_total stays derived from the item
// lines, and the reconcile sweep reports when the two drift apart.
type TaxLine struct {
	ID        int64           `json:"id"`
	CompanyID int64           `json:"company_id"`
	InvoiceID int64           `json:"invoice_id"`
	TaxID     *int64          `json:"tax_id,omitempty"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedBy int64           `json:"created_by"`
	UpdatedBy *int64          `json:"updated_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
