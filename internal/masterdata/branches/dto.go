package branches

type CreateBranchRequest struct {
	Code    string  `json:"code" validate:"required,max=20,alphanum"`
	Name    string  `json:"name" validate:"required,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	CityID  *int64  `json:"city_id,omitempty" validate:"omitempty,gt=0"`
}

type UpdateBranchRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	CityID  *int64  `json:"city_id,omitempty" validate:"omitempty,gt=0"`
	Active  *bool   `json:"active,omitempty"`
}
