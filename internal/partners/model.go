package partners

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind separates customers from suppliers. Both live in one table and share
// the same shape; invoices reference either through partner_id.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindSupplier Kind = "supplier"
)

// Partner is a customer or supplier of the company.
type Partner struct {
	ID          int64           `json:"id"`
	CompanyID   int64           `json:"company_id"`
	Kind        Kind            `json:"kind"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	TaxNumber   *string         `json:"tax_number,omitempty"`
	Email       *string         `json:"email,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	Address     *string         `json:"address,omitempty"`
	CityID      *int64          `json:"city_id,omitempty"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Active      bool            `json:"active"`
	CreatedBy   int64           `json:"created_by"`
	UpdatedBy   *int64          `json:"updated_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
