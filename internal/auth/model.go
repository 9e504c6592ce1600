package auth

import "time"

// UserStatus enumerates account states.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserDisabled UserStatus = "disabled"
)

// User is an authenticated principal. PasswordHash is a bcrypt digest and
// never leaves the package.
type User struct {
	ID           int64      `json:"id"`
	CompanyID    int64      `json:"company_id"`
	BranchID     *int64     `json:"branch_id,omitempty"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        *string    `json:"phone,omitempty"`
	PasswordHash string     `json:"-"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
