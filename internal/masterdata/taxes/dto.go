package taxes

type CreateTaxRequest struct {
	Name string  `json:"name" validate:"required,max=100"`
	Rate float64 `json:"rate" validate:"gte=0,lte=100"`
}

type UpdateTaxRequest struct {
	Name   *string  `json:"name,omitempty" validate:"omitempty,max=100"`
	Rate   *float64 `json:"rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	Active *bool    `json:"active,omitempty"`
}
