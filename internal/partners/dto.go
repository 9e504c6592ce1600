package partners

type CreatePartnerRequest struct {
	Code        string   `json:"code" validate:"required,max=20"`
	Name        string   `json:"name" validate:"required,max=200"`
	TaxNumber   *string  `json:"tax_number,omitempty" validate:"omitempty,max=50"`
	Email       *string  `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone       *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,max=500"`
	CityID      *int64   `json:"city_id,omitempty" validate:"omitempty,gt=0"`
	CreditLimit *float64 `json:"credit_limit,omitempty" validate:"omitempty,gte=0"`
}

type UpdatePartnerRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	TaxNumber   *string  `json:"tax_number,omitempty" validate:"omitempty,max=50"`
	Email       *string  `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone       *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,max=500"`
	CityID      *int64   `json:"city_id,omitempty" validate:"omitempty,gt=0"`
	CreditLimit *float64 `json:"credit_limit,omitempty" validate:"omitempty,gte=0"`
	Active      *bool    `json:"active,omitempty"`
}

type ListPartnersRequest struct {
	CompanyID int64
	Kind      Kind
	Search    string
	Page      int
	PerPage   int
}
