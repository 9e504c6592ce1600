package companies

type CreateCompanyRequest struct {
	Name       string  `json:"name" validate:"required,max=200"`
	LegalName  *string `json:"legal_name,omitempty" validate:"omitempty,max=200"`
	TaxNumber  *string `json:"tax_number,omitempty" validate:"omitempty,max=50"`
	CurrencyID *int64  `json:"currency_id,omitempty" validate:"omitempty,gt=0"`
	CountryID  *int64  `json:"country_id,omitempty" validate:"omitempty,gt=0"`
	Address    *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

type UpdateCompanyRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,max=200"`
	LegalName  *string `json:"legal_name,omitempty" validate:"omitempty,max=200"`
	TaxNumber  *string `json:"tax_number,omitempty" validate:"omitempty,max=50"`
	CurrencyID *int64  `json:"currency_id,omitempty" validate:"omitempty,gt=0"`
	CountryID  *int64  `json:"country_id,omitempty" validate:"omitempty,gt=0"`
	Address    *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Active     *bool   `json:"active,omitempty"`
}
