package currencies

import "time"

type CreateCurrencyRequest struct {
	Code          string  `json:"code" validate:"required,len=3,alpha"`
	Name          string  `json:"name" validate:"required,max=100"`
	Symbol        *string `json:"symbol,omitempty" validate:"omitempty,max=10"`
	DecimalPlaces *int    `json:"decimal_places,omitempty" validate:"omitempty,gte=0,lte=6"`
}

type UpdateCurrencyRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Symbol        *string `json:"symbol,omitempty" validate:"omitempty,max=10"`
	DecimalPlaces *int    `json:"decimal_places,omitempty" validate:"omitempty,gte=0,lte=6"`
	Active        *bool   `json:"active,omitempty"`
}

type SetRateRequest struct {
	Rate float64   `json:"rate" validate:"required,gt=0"`
	AsOf time.Time `json:"as_of" validate:"required"`
}
