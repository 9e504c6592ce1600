package hr

import "time"

type CreateDepartmentRequest struct {
	Name      string `json:"name" validate:"required,max=150"`
	ManagerID *int64 `json:"manager_id,omitempty" validate:"omitempty,gt=0"`
}

type UpdateDepartmentRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=150"`
	ManagerID *int64  `json:"manager_id,omitempty" validate:"omitempty,gt=0"`
}

type CreateEmployeeRequest struct {
	BranchID     *int64    `json:"branch_id,omitempty" validate:"omitempty,gt=0"`
	DepartmentID *int64    `json:"department_id,omitempty" validate:"omitempty,gt=0"`
	Code         string    `json:"code" validate:"required,max=20"`
	Name         string    `json:"name" validate:"required,max=200"`
	Email        *string   `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone        *string   `json:"phone,omitempty" validate:"omitempty,max=30"`
	Position     *string   `json:"position,omitempty" validate:"omitempty,max=100"`
	Salary       float64   `json:"salary" validate:"gte=0"`
	CurrencyID   *int64    `json:"currency_id,omitempty" validate:"omitempty,gt=0"`
	HiredAt      time.Time `json:"hired_at" validate:"required"`
}

type UpdateEmployeeRequest struct {
	BranchID     *int64   `json:"branch_id,omitempty" validate:"omitempty,gt=0"`
	DepartmentID *int64   `json:"department_id,omitempty" validate:"omitempty,gt=0"`
	Name         *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Email        *string  `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone        *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	Position     *string  `json:"position,omitempty" validate:"omitempty,max=100"`
	Salary       *float64 `json:"salary,omitempty" validate:"omitempty,gte=0"`
	CurrencyID   *int64   `json:"currency_id,omitempty" validate:"omitempty,gt=0"`
	Active       *bool    `json:"active,omitempty"`
}

type CreateLeaveRequest struct {
	EmployeeID int64     `json:"employee_id" validate:"required,gt=0"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	Reason     *string   `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type UpdateLeaveRequest struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Reason    *string    `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type CheckInRequest struct {
	EmployeeID int64 `json:"employee_id" validate:"required,gt=0"`
}
