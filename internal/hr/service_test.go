package hr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/shared"
)

type memRepo struct {
	employees  map[int64]*Employee
	leaves     map[int64]*LeaveRequest
	attendance map[int64]*Attendance
	depts      map[int64]*Department
	nextID     int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		employees:  map[int64]*Employee{},
		leaves:     map[int64]*LeaveRequest{},
		attendance: map[int64]*Attendance{},
		depts:      map[int64]*Department{},
		nextID:     1,
	}
}

func (m *memRepo) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memRepo) CreateDepartment(ctx context.Context, d Department) (int64, error) {
	d.ID = m.id()
	m.depts[d.ID] = &d
	return d.ID, nil
}

func (m *memRepo) GetDepartment(ctx context.Context, companyID, id int64) (*Department, error) {
	d, ok := m.depts[id]
	if !ok || d.CompanyID != companyID {
		return nil, shared.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memRepo) UpdateDepartment(ctx context.Context, companyID, id int64, updates map[string]any) error {
	d, ok := m.depts[id]
	if !ok || d.CompanyID != companyID {
		return shared.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		d.Name = v.(string)
	}
	if v, ok := updates["manager_id"]; ok {
		mgr := v.(int64)
		d.ManagerID = &mgr
	}
	return nil
}

func (m *memRepo) ListDepartments(ctx context.Context, companyID int64) ([]Department, error) {
	var out []Department
	for _, d := range m.depts {
		if d.CompanyID == companyID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memRepo) DeleteDepartment(ctx context.Context, companyID, id int64) error {
	d, ok := m.depts[id]
	if !ok || d.CompanyID != companyID {
		return shared.ErrNotFound
	}
	delete(m.depts, id)
	return nil
}

func (m *memRepo) CreateEmployee(ctx context.Context, e Employee) (int64, error) {
	for _, other := range m.employees {
		if other.CompanyID == e.CompanyID && other.Code == e.Code {
			return 0, ErrEmployeeCodeTaken
		}
	}
	e.ID = m.id()
	e.Active = true
	m.employees[e.ID] = &e
	return e.ID, nil
}

func (m *memRepo) GetEmployee(ctx context.Context, companyID, id int64) (*Employee, error) {
	e, ok := m.employees[id]
	if !ok || e.CompanyID != companyID {
		return nil, shared.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memRepo) ListEmployees(ctx context.Context, companyID int64, search string, page, perPage int) ([]Employee, int, error) {
	var out []Employee
	for _, e := range m.employees {
		if e.CompanyID == companyID {
			out = append(out, *e)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) UpdateEmployee(ctx context.Context, companyID, id int64, updates map[string]any) error {
	e, ok := m.employees[id]
	if !ok || e.CompanyID != companyID {
		return shared.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		e.Name = v.(string)
	}
	if v, ok := updates["active"]; ok {
		e.Active = v.(bool)
	}
	return nil
}

func (m *memRepo) SoftDeleteEmployee(ctx context.Context, companyID, id, deletedBy int64) error {
	e, ok := m.employees[id]
	if !ok || e.CompanyID != companyID {
		return shared.ErrNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *memRepo) CreateLeave(ctx context.Context, l LeaveRequest) (int64, error) {
	l.ID = m.id()
	l.Status = LeavePending
	m.leaves[l.ID] = &l
	return l.ID, nil
}

func (m *memRepo) GetLeave(ctx context.Context, companyID, id int64) (*LeaveRequest, error) {
	l, ok := m.leaves[id]
	if !ok || l.CompanyID != companyID {
		return nil, shared.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memRepo) ListLeaves(ctx context.Context, companyID int64, status *LeaveStatus) ([]LeaveRequest, error) {
	var out []LeaveRequest
	for _, l := range m.leaves {
		if l.CompanyID != companyID {
			continue
		}
		if status != nil && l.Status != *status {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (m *memRepo) DecideLeave(ctx context.Context, companyID, id int64, status LeaveStatus, decidedBy int64, decidedAt time.Time) (bool, error) {
	l, ok := m.leaves[id]
	if !ok || l.CompanyID != companyID || l.Status != LeavePending {
		return false, nil
	}
	l.Status = status
	l.DecidedBy = &decidedBy
	l.DecidedAt = &decidedAt
	return true, nil
}

func (m *memRepo) UpdateLeave(ctx context.Context, companyID, id int64, updates map[string]any) (bool, error) {
	l, ok := m.leaves[id]
	if !ok || l.CompanyID != companyID || l.Status != LeavePending {
		return false, nil
	}
	if v, ok := updates["start_date"]; ok {
		l.StartDate = v.(time.Time)
	}
	if v, ok := updates["end_date"]; ok {
		l.EndDate = v.(time.Time)
	}
	if v, ok := updates["reason"]; ok {
		reason := v.(string)
		l.Reason = &reason
	}
	return true, nil
}

func (m *memRepo) SoftDeleteLeave(ctx context.Context, companyID, id, deletedBy int64) (bool, error) {
	l, ok := m.leaves[id]
	if !ok || l.CompanyID != companyID || l.Status != LeavePending {
		return false, nil
	}
	delete(m.leaves, id)
	return true, nil
}

func (m *memRepo) CheckIn(ctx context.Context, a Attendance) (int64, error) {
	for _, other := range m.attendance {
		if other.EmployeeID == a.EmployeeID && other.Day.Equal(a.Day) {
			return 0, ErrAlreadyCheckedIn
		}
	}
	a.ID = m.id()
	m.attendance[a.ID] = &a
	return a.ID, nil
}

func (m *memRepo) CheckOut(ctx context.Context, companyID, employeeID int64, day, at time.Time) (bool, error) {
	for _, a := range m.attendance {
		if a.CompanyID == companyID && a.EmployeeID == employeeID && a.Day.Equal(day) && a.CheckOut == nil {
			out := at
			a.CheckOut = &out
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) ListAttendance(ctx context.Context, companyID, employeeID int64, from, to time.Time) ([]Attendance, error) {
	var out []Attendance
	for _, a := range m.attendance {
		if a.CompanyID == companyID && a.EmployeeID == employeeID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func hrScope() shared.Scope {
	return shared.Scope{UserID: 9, CompanyID: 1}
}

func seedEmployee(t *testing.T, svc *Service) *Employee {
	t.Helper()
	e, err := svc.CreateEmployee(context.Background(), hrScope(), CreateEmployeeRequest{
		Code:    "emp-1",
		Name:    "Dana",
		Salary:  4200,
		HiredAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return e
}

func TestLeaveDecisionIsFinal(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	e := seedEmployee(t, svc)

	l, err := svc.RequestLeave(context.Background(), hrScope(), CreateLeaveRequest{
		EmployeeID: e.ID,
		StartDate:  time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, LeavePending, l.Status)

	approved, err := svc.ApproveLeave(context.Background(), hrScope(), l.ID)
	require.NoError(t, err)
	require.Equal(t, LeaveApproved, approved.Status)
	require.NotNil(t, approved.DecidedBy)
	require.Equal(t, int64(9), *approved.DecidedBy)

	_, err = svc.RejectLeave(context.Background(), hrScope(), l.ID)
	require.ErrorIs(t, err, ErrAlreadyDecided)

	_, err = svc.ApproveLeave(context.Background(), hrScope(), int64(999))
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLeaveUpdateAndDeletePendingOnly(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	e := seedEmployee(t, svc)

	l, err := svc.RequestLeave(context.Background(), hrScope(), CreateLeaveRequest{
		EmployeeID: e.ID,
		StartDate:  time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// A pending request can be amended, but the dates must stay ordered.
	newEnd := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateLeave(context.Background(), hrScope(), l.ID, UpdateLeaveRequest{EndDate: &newEnd})
	require.NoError(t, err)
	require.True(t, updated.EndDate.Equal(newEnd))

	badEnd := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.UpdateLeave(context.Background(), hrScope(), l.ID, UpdateLeaveRequest{EndDate: &badEnd})
	require.ErrorIs(t, err, shared.ErrValidation)

	// Once decided, neither update nor delete may touch it.
	_, err = svc.ApproveLeave(context.Background(), hrScope(), l.ID)
	require.NoError(t, err)

	reason := "changed my mind"
	_, err = svc.UpdateLeave(context.Background(), hrScope(), l.ID, UpdateLeaveRequest{Reason: &reason})
	require.ErrorIs(t, err, ErrAlreadyDecided)
	require.ErrorIs(t, svc.DeleteLeave(context.Background(), hrScope(), l.ID), ErrAlreadyDecided)
}

func TestLeaveDeleteWithdrawsPendingRequest(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	e := seedEmployee(t, svc)

	l, err := svc.RequestLeave(context.Background(), hrScope(), CreateLeaveRequest{
		EmployeeID: e.ID,
		StartDate:  time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLeave(context.Background(), hrScope(), l.ID))
	_, err = svc.GetLeave(context.Background(), hrScope(), l.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLeaveRequiresKnownEmployee(t *testing.T) {
	svc := NewService(newMemRepo(), nil)

	_, err := svc.RequestLeave(context.Background(), hrScope(), CreateLeaveRequest{
		EmployeeID: 42,
		StartDate:  time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAttendanceOncePerDay(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	e := seedEmployee(t, svc)

	clock := time.Date(2025, 7, 14, 8, 30, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return clock })

	_, err := svc.CheckIn(context.Background(), hrScope(), CheckInRequest{EmployeeID: e.ID})
	require.NoError(t, err)

	// Same day, later time: still one record per day.
	clock = clock.Add(2 * time.Hour)
	_, err = svc.CheckIn(context.Background(), hrScope(), CheckInRequest{EmployeeID: e.ID})
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)

	require.NoError(t, svc.CheckOut(context.Background(), hrScope(), e.ID))
	require.ErrorIs(t, svc.CheckOut(context.Background(), hrScope(), e.ID), ErrNotCheckedIn)

	// Next day opens a fresh record.
	clock = clock.Add(24 * time.Hour)
	_, err = svc.CheckIn(context.Background(), hrScope(), CheckInRequest{EmployeeID: e.ID})
	require.NoError(t, err)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	e := seedEmployee(t, svc)

	require.ErrorIs(t, svc.CheckOut(context.Background(), hrScope(), e.ID), ErrNotCheckedIn)
}

func TestDepartmentManagerMustExist(t *testing.T) {
	svc := NewService(newMemRepo(), nil)

	managerID := int64(500)
	_, err := svc.CreateDepartment(context.Background(), hrScope(), CreateDepartmentRequest{
		Name:      "Finance",
		ManagerID: &managerID,
	})
	require.ErrorIs(t, err, shared.ErrNotFound)

	e := seedEmployee(t, svc)
	_, err = svc.CreateDepartment(context.Background(), hrScope(), CreateDepartmentRequest{
		Name:      "Finance",
		ManagerID: &e.ID,
	})
	require.NoError(t, err)
}

func TestDepartmentUpdate(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	e := seedEmployee(t, svc)

	id, err := svc.CreateDepartment(context.Background(), hrScope(), CreateDepartmentRequest{Name: "Finance"})
	require.NoError(t, err)

	name := "Accounting"
	d, err := svc.UpdateDepartment(context.Background(), hrScope(), id, UpdateDepartmentRequest{
		Name:      &name,
		ManagerID: &e.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "Accounting", d.Name)
	require.NotNil(t, d.ManagerID)
	require.Equal(t, e.ID, *d.ManagerID)

	// The new manager must exist, same as on create.
	ghost := int64(404)
	_, err = svc.UpdateDepartment(context.Background(), hrScope(), id, UpdateDepartmentRequest{ManagerID: &ghost})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEmployeeCodeUppercasedAndUnique(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	e := seedEmployee(t, svc)
	require.Equal(t, "EMP-1", e.Code)

	_, err := svc.CreateEmployee(context.Background(), hrScope(), CreateEmployeeRequest{
		Code:    "EMP-1",
		Name:    "Other",
		HiredAt: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, ErrEmployeeCodeTaken)
}
