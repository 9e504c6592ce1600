package companies

import "time"

// Company is the top-level tenant. Everything else hangs off a company id.
type Company struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	LegalName  *string   `json:"legal_name,omitempty"`
	TaxNumber  *string   `json:"tax_number,omitempty"`
	CurrencyID *int64    `json:"currency_id,omitempty"`
	CountryID  *int64    `json:"country_id,omitempty"`
	Address    *string   `json:"address,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Active     bool      `json:"active"`
	CreatedBy  int64     `json:"created_by"`
	UpdatedBy  *int64    `json:"updated_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
