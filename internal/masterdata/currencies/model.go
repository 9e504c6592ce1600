package currencies

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency enabled for a company.
type Currency struct {
	ID            int64     `json:"id"`
	CompanyID     int64     `json:"company_id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Symbol        *string   `json:"symbol,omitempty"`
	DecimalPlaces int       `json:"decimal_places"`
	Active        bool      `json:"active"`
	CreatedBy     int64     `json:"created_by"`
	UpdatedBy     *int64    `json:"updated_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Rate is the exchange rate of a currency against the company base
// currency on a given day.
type Rate struct {
	CurrencyID int64           `json:"currency_id"`
	Rate       decimal.Decimal `json:"rate"`
	AsOf       time.Time       `json:"as_of"`
}
