package auth

type RegisterRequest struct {
	CompanyID int64   `json:"company_id" validate:"required,gt=0"`
	BranchID  *int64  `json:"branch_id,omitempty" validate:"omitempty,gt=0"`
	Name      string  `json:"name" validate:"required,max=150"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type OTPVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	User      *User  `json:"user"`
}
