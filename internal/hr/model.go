package hr

import (
	"time"

	"github.com/shopspring/decimal"
)

// Department groups employees.
type Department struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	ManagerID *int64    `json:"manager_id,omitempty"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Employee is a staff member of a company branch.
type Employee struct {
	ID           int64           `json:"id"`
	CompanyID    int64           `json:"company_id"`
	BranchID     *int64          `json:"branch_id,omitempty"`
	DepartmentID *int64          `json:"department_id,omitempty"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Email        *string         `json:"email,omitempty"`
	Phone        *string         `json:"phone,omitempty"`
	Position     *string         `json:"position,omitempty"`
	Salary       decimal.Decimal `json:"salary"`
	CurrencyID   *int64          `json:"currency_id,omitempty"`
	HiredAt      time.Time       `json:"hired_at"`
	Active       bool            `json:"active"`
	CreatedBy    int64           `json:"created_by"`
	UpdatedBy    *int64          `json:"updated_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// LeaveStatus enumerates leave request states.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// LeaveRequest is a dated absence request. Only pending requests can be
// decided, and a decision is final.
type LeaveRequest struct {
	ID         int64       `json:"id"`
	CompanyID  int64       `json:"company_id"`
	EmployeeID int64       `json:"employee_id"`
	StartDate  time.Time   `json:"start_date"`
	EndDate    time.Time   `json:"end_date"`
	Reason     *string     `json:"reason,omitempty"`
	Status     LeaveStatus `json:"status"`
	DecidedBy  *int64      `json:"decided_by,omitempty"`
	DecidedAt  *time.Time  `json:"decided_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Attendance is one check-in/check-out record, unique per employee and day.
type Attendance struct {
	ID         int64      `json:"id"`
	CompanyID  int64      `json:"company_id"`
	EmployeeID int64      `json:"employee_id"`
	Day        time.Time  `json:"day"`
	CheckIn    time.Time  `json:"check_in"`
	CheckOut   *time.Time `json:"check_out,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
