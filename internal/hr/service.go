package hr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian/internal/shared"
)

var (
	ErrAlreadyDecided = errors.New("leave request already decided")
	ErrNotCheckedIn   = errors.New("no open check-in for this day")
)

type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock, used in tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CreateDepartment(ctx context.Context, scope shared.Scope, req CreateDepartmentRequest) (int64, error) {
	if !scope.Valid() {
		return 0, shared.ErrScopeMissing
	}
	if req.ManagerID != nil {
		if _, err := s.repo.GetEmployee(ctx, scope.CompanyID, *req.ManagerID); err != nil {
			return 0, fmt.Errorf("manager: %w", err)
		}
	}
	id, err := s.repo.CreateDepartment(ctx, Department{
		CompanyID: scope.CompanyID,
		Name:      req.Name,
		ManagerID: req.ManagerID,
		CreatedBy: scope.UserID,
	})
	if err != nil {
		return 0, err
	}
	s.record(ctx, scope, "department.create", id)
	return id, nil
}

func (s *Service) GetDepartment(ctx context.Context, scope shared.Scope, id int64) (*Department, error) {
	return s.repo.GetDepartment(ctx, scope.CompanyID, id)
}

func (s *Service) ListDepartments(ctx context.Context, scope shared.Scope) ([]Department, error) {
	return s.repo.ListDepartments(ctx, scope.CompanyID)
}

func (s *Service) UpdateDepartment(ctx context.Context, scope shared.Scope, id int64, req UpdateDepartmentRequest) (*Department, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	updates := map[string]any{"updated_by": scope.UserID}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.ManagerID != nil {
		if _, err := s.repo.GetEmployee(ctx, scope.CompanyID, *req.ManagerID); err != nil {
			return nil, fmt.Errorf("manager: %w", err)
		}
		updates["manager_id"] = *req.ManagerID
	}
	if err := s.repo.UpdateDepartment(ctx, scope.CompanyID, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, scope, "department.update", id)
	return s.repo.GetDepartment(ctx, scope.CompanyID, id)
}

func (s *Service) DeleteDepartment(ctx context.Context, scope shared.Scope, id int64) error {
	if !scope.Valid() {
		return shared.ErrScopeMissing
	}
	if err := s.repo.DeleteDepartment(ctx, scope.CompanyID, id); err != nil {
		return err
	}
	s.record(ctx, scope, "department.delete", id)
	return nil
}

func (s *Service) CreateEmployee(ctx context.Context, scope shared.Scope, req CreateEmployeeRequest) (*Employee, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	branchID := req.BranchID
	if branchID == nil {
		branchID = scope.BranchID
	}
	id, err := s.repo.CreateEmployee(ctx, Employee{
		CompanyID:    scope.CompanyID,
		BranchID:     branchID,
		DepartmentID: req.DepartmentID,
		Code:         strings.ToUpper(req.Code),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Position:     req.Position,
		Salary:       decimal.NewFromFloat(req.Salary),
		CurrencyID:   req.CurrencyID,
		HiredAt:      req.HiredAt,
		CreatedBy:    scope.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, scope, "employee.create", id)
	return s.repo.GetEmployee(ctx, scope.CompanyID, id)
}

func (s *Service) GetEmployee(ctx context.Context, scope shared.Scope, id int64) (*Employee, error) {
	return s.repo.GetEmployee(ctx, scope.CompanyID, id)
}

func (s *Service) ListEmployees(ctx context.Context, scope shared.Scope, search string, page, perPage int) ([]Employee, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	return s.repo.ListEmployees(ctx, scope.CompanyID, search, page, perPage)
}

func (s *Service) UpdateEmployee(ctx context.Context, scope shared.Scope, id int64, req UpdateEmployeeRequest) (*Employee, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	updates := map[string]any{"updated_by": scope.UserID}
	if req.BranchID != nil {
		updates["branch_id"] = *req.BranchID
	}
	if req.DepartmentID != nil {
		updates["department_id"] = *req.DepartmentID
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.Salary != nil {
		updates["salary"] = decimal.NewFromFloat(*req.Salary)
	}
	if req.CurrencyID != nil {
		updates["currency_id"] = *req.CurrencyID
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := s.repo.UpdateEmployee(ctx, scope.CompanyID, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, scope, "employee.update", id)
	return s.repo.GetEmployee(ctx, scope.CompanyID, id)
}

func (s *Service) DeleteEmployee(ctx context.Context, scope shared.Scope, id int64) error {
	if !scope.Valid() {
		return shared.ErrScopeMissing
	}
	if err := s.repo.SoftDeleteEmployee(ctx, scope.CompanyID, id, scope.UserID); err != nil {
		return err
	}
	s.record(ctx, scope, "employee.delete", id)
	return nil
}

func (s *Service) RequestLeave(ctx context.Context, scope shared.Scope, req CreateLeaveRequest) (*LeaveRequest, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	if _, err := s.repo.GetEmployee(ctx, scope.CompanyID, req.EmployeeID); err != nil {
		return nil, fmt.Errorf("employee: %w", err)
	}
	id, err := s.repo.CreateLeave(ctx, LeaveRequest{
		CompanyID:  scope.CompanyID,
		EmployeeID: req.EmployeeID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Reason:     req.Reason,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, scope, "leave.request", id)
	return s.repo.GetLeave(ctx, scope.CompanyID, id)
}

func (s *Service) GetLeave(ctx context.Context, scope shared.Scope, id int64) (*LeaveRequest, error) {
	return s.repo.GetLeave(ctx, scope.CompanyID, id)
}

func (s *Service) ListLeaves(ctx context.Context, scope shared.Scope, status *LeaveStatus) ([]LeaveRequest, error) {
	return s.repo.ListLeaves(ctx, scope.CompanyID, status)
}

// UpdateLeave amends a pending request. Decided requests are immutable.
func (s *Service) UpdateLeave(ctx context.Context, scope shared.Scope, id int64, req UpdateLeaveRequest) (*LeaveRequest, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	existing, err := s.repo.GetLeave(ctx, scope.CompanyID, id)
	if err != nil {
		return nil, err
	}

	start, end := existing.StartDate, existing.EndDate
	updates := map[string]any{}
	if req.StartDate != nil {
		start = *req.StartDate
		updates["start_date"] = start
	}
	if req.EndDate != nil {
		end = *req.EndDate
		updates["end_date"] = end
	}
	if req.Reason != nil {
		updates["reason"] = *req.Reason
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end_date before start_date: %w", shared.ErrValidation)
	}

	updated, err := s.repo.UpdateLeave(ctx, scope.CompanyID, id, updates)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Decided or deleted between the read and the write.
		if _, err := s.repo.GetLeave(ctx, scope.CompanyID, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyDecided
	}
	s.record(ctx, scope, "leave.update", id)
	return s.repo.GetLeave(ctx, scope.CompanyID, id)
}

// DeleteLeave withdraws a pending request.
func (s *Service) DeleteLeave(ctx context.Context, scope shared.Scope, id int64) error {
	if !scope.Valid() {
		return shared.ErrScopeMissing
	}
	deleted, err := s.repo.SoftDeleteLeave(ctx, scope.CompanyID, id, scope.UserID)
	if err != nil {
		return err
	}
	if !deleted {
		if _, err := s.repo.GetLeave(ctx, scope.CompanyID, id); err != nil {
			return err
		}
		return ErrAlreadyDecided
	}
	s.record(ctx, scope, "leave.delete", id)
	return nil
}

func (s *Service) ApproveLeave(ctx context.Context, scope shared.Scope, id int64) (*LeaveRequest, error) {
	return s.decide(ctx, scope, id, LeaveApproved)
}

func (s *Service) RejectLeave(ctx context.Context, scope shared.Scope, id int64) (*LeaveRequest, error) {
	return s.decide(ctx, scope, id, LeaveRejected)
}

func (s *Service) decide(ctx context.Context, scope shared.Scope, id int64, status LeaveStatus) (*LeaveRequest, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	decided, err := s.repo.DecideLeave(ctx, scope.CompanyID, id, status, scope.UserID, s.now())
	if err != nil {
		return nil, err
	}
	if !decided {
		// Either absent or already decided; re-read to tell the two apart.
		if _, err := s.repo.GetLeave(ctx, scope.CompanyID, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyDecided
	}
	s.record(ctx, scope, shared.Action("leave."+string(status)), id)
	return s.repo.GetLeave(ctx, scope.CompanyID, id)
}

// CheckIn opens today's attendance record for the employee. A second
// check-in on the same day is rejected.
func (s *Service) CheckIn(ctx context.Context, scope shared.Scope, req CheckInRequest) (int64, error) {
	if !scope.Valid() {
		return 0, shared.ErrScopeMissing
	}
	if _, err := s.repo.GetEmployee(ctx, scope.CompanyID, req.EmployeeID); err != nil {
		return 0, fmt.Errorf("employee: %w", err)
	}
	now := s.now()
	return s.repo.CheckIn(ctx, Attendance{
		CompanyID:  scope.CompanyID,
		EmployeeID: req.EmployeeID,
		Day:        day(now),
		CheckIn:    now,
	})
}

func (s *Service) CheckOut(ctx context.Context, scope shared.Scope, employeeID int64) error {
	if !scope.Valid() {
		return shared.ErrScopeMissing
	}
	now := s.now()
	closed, err := s.repo.CheckOut(ctx, scope.CompanyID, employeeID, day(now), now)
	if err != nil {
		return err
	}
	if !closed {
		return ErrNotCheckedIn
	}
	return nil
}

func (s *Service) ListAttendance(ctx context.Context, scope shared.Scope, employeeID int64, from, to time.Time) ([]Attendance, error) {
	return s.repo.ListAttendance(ctx, scope.CompanyID, employeeID, from, to)
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) record(ctx context.Context, scope shared.Scope, action shared.Action, id int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  scope.UserID,
		Action:   action,
		Entity:   "hr",
		EntityID: fmt.Sprintf("%d", id),
		At:       s.now(),
	})
}
