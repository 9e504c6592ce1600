package units

type CreateUnitRequest struct {
	Code string `json:"code" validate:"required,max=10"`
	Name string `json:"name" validate:"required,max=100"`
}

type UpdateUnitRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=100"`
}
