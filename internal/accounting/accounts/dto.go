package accounts

type CreateAccountRequest struct {
	Code     string `json:"code" validate:"required,max=20"`
	Name     string `json:"name" validate:"required,max=200"`
	Type     string `json:"type" validate:"required,oneof=asset liability equity income expense"`
	ParentID *int64 `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
}

type UpdateAccountRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	ParentID *int64  `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
	Active   *bool   `json:"active,omitempty"`
}
