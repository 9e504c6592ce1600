package hr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/shared"
)

var (
	ErrEmployeeCodeTaken = errors.New("employee code already in use")
	ErrAlreadyCheckedIn  = errors.New("employee already checked in for this day")
)

type Repository interface {
	CreateDepartment(ctx context.Context, d Department) (int64, error)
	GetDepartment(ctx context.Context, companyID, id int64) (*Department, error)
	ListDepartments(ctx context.Context, companyID int64) ([]Department, error)
	UpdateDepartment(ctx context.Context, companyID, id int64, updates map[string]any) error
	DeleteDepartment(ctx context.Context, companyID, id int64) error

	CreateEmployee(ctx context.Context, e Employee) (int64, error)
	GetEmployee(ctx context.Context, companyID, id int64) (*Employee, error)
	ListEmployees(ctx context.Context, companyID int64, search string, page, perPage int) ([]Employee, int, error)
	UpdateEmployee(ctx context.Context, companyID, id int64, updates map[string]any) error
	SoftDeleteEmployee(ctx context.Context, companyID, id, deletedBy int64) error

	CreateLeave(ctx context.Context, l LeaveRequest) (int64, error)
	GetLeave(ctx context.Context, companyID, id int64) (*LeaveRequest, error)
	ListLeaves(ctx context.Context, companyID int64, status *LeaveStatus) ([]LeaveRequest, error)
	UpdateLeave(ctx context.Context, companyID, id int64, updates map[string]any) (bool, error)
	DecideLeave(ctx context.Context, companyID, id int64, status LeaveStatus, decidedBy int64, decidedAt time.Time) (bool, error)
	SoftDeleteLeave(ctx context.Context, companyID, id, deletedBy int64) (bool, error)

	CheckIn(ctx context.Context, a Attendance) (int64, error)
	CheckOut(ctx context.Context, companyID, employeeID int64, day, at time.Time) (bool, error)
	ListAttendance(ctx context.Context, companyID, employeeID int64, from, to time.Time) ([]Attendance, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CreateDepartment(ctx context.Context, d Department) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO departments (company_id, name, manager_id, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		d.CompanyID, d.Name, d.ManagerID, d.CreatedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert department: %w", err)
	}
	return id, nil
}

func (r *repository) GetDepartment(ctx context.Context, companyID, id int64) (*Department, error) {
	var d Department
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_id, name, manager_id, created_by, created_at, updated_at
		FROM departments
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID).Scan(
		&d.ID, &d.CompanyID, &d.Name, &d.ManagerID, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan department: %w", err)
	}
	return &d, nil
}

func (r *repository) ListDepartments(ctx context.Context, companyID int64) ([]Department, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, name, manager_id, created_by, created_at, updated_at
		FROM departments
		WHERE company_id = $1 AND deleted_at IS NULL
		ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.Name, &d.ManagerID,
			&d.CreatedBy, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repository) UpdateDepartment(ctx context.Context, companyID, id int64, updates map[string]any) error {
	set := make([]string, 0, len(updates)+1)
	args := []any{id, companyID}
	for col, val := range updates {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	set = append(set, "updated_at = now()")

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE departments SET %s
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`,
		strings.Join(set, ", ")), args...)
	if err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteDepartment(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE departments SET deleted_at = now()
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CreateEmployee(ctx context.Context, e Employee) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO employees (company_id, branch_id, department_id, code, name,
			email, phone, position, salary, currency_id, hired_at, active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, true, $12)
		RETURNING id`,
		e.CompanyID, e.BranchID, e.DepartmentID, e.Code, e.Name,
		e.Email, e.Phone, e.Position, e.Salary, e.CurrencyID, e.HiredAt, e.CreatedBy).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrEmployeeCodeTaken
		}
		return 0, fmt.Errorf("insert employee: %w", err)
	}
	return id, nil
}

const employeeColumns = `id, company_id, branch_id, department_id, code, name,
	email, phone, position, salary, currency_id, hired_at, active, created_by,
	updated_by, created_at, updated_at`

func (r *repository) GetEmployee(ctx context.Context, companyID, id int64) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID)
	return scanEmployee(row)
}

func scanEmployee(row pgx.Row) (*Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.CompanyID, &e.BranchID, &e.DepartmentID, &e.Code,
		&e.Name, &e.Email, &e.Phone, &e.Position, &e.Salary, &e.CurrencyID,
		&e.HiredAt, &e.Active, &e.CreatedBy, &e.UpdatedBy, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan employee: %w", err)
	}
	return &e, nil
}

func (r *repository) ListEmployees(ctx context.Context, companyID int64, search string, page, perPage int) ([]Employee, int, error) {
	where := "company_id = $1 AND deleted_at IS NULL"
	args := []any{companyID}
	if search != "" {
		where += " AND (name ILIKE $2 OR code ILIKE $2)"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT count(*) FROM employees WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM employees
		WHERE %s
		ORDER BY name
		LIMIT $%d OFFSET $%d`, employeeColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

func (r *repository) UpdateEmployee(ctx context.Context, companyID, id int64, updates map[string]any) error {
	set := make([]string, 0, len(updates)+1)
	args := []any{id, companyID}
	for col, val := range updates {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	set = append(set, "updated_at = now()")

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE employees SET %s
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`,
		strings.Join(set, ", ")), args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmployeeCodeTaken
		}
		return fmt.Errorf("update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDeleteEmployee(ctx context.Context, companyID, id, deletedBy int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE employees SET deleted_at = now(), deleted_by = $3
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID, deletedBy)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CreateLeave(ctx context.Context, l LeaveRequest) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO leave_requests (company_id, employee_id, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING id`,
		l.CompanyID, l.EmployeeID, l.StartDate, l.EndDate, l.Reason).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert leave request: %w", err)
	}
	return id, nil
}

func (r *repository) GetLeave(ctx context.Context, companyID, id int64) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_id, employee_id, start_date, end_date, reason,
			status, decided_by, decided_at, created_at, updated_at
		FROM leave_requests
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID).Scan(
		&l.ID, &l.CompanyID, &l.EmployeeID, &l.StartDate, &l.EndDate, &l.Reason,
		&l.Status, &l.DecidedBy, &l.DecidedAt, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan leave request: %w", err)
	}
	return &l, nil
}

func (r *repository) ListLeaves(ctx context.Context, companyID int64, status *LeaveStatus) ([]LeaveRequest, error) {
	query := `
		SELECT id, company_id, employee_id, start_date, end_date, reason,
			status, decided_by, decided_at, created_at, updated_at
		FROM leave_requests
		WHERE company_id = $1 AND deleted_at IS NULL`
	args := []any{companyID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()

	var out []LeaveRequest
	for rows.Next() {
		var l LeaveRequest
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.EmployeeID, &l.StartDate,
			&l.EndDate, &l.Reason, &l.Status, &l.DecidedBy, &l.DecidedAt,
			&l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DecideLeave flips a pending request to its final status. The status guard
// sits in the WHERE clause so two concurrent decisions cannot both win.
func (r *repository) DecideLeave(ctx context.Context, companyID, id int64, status LeaveStatus, decidedBy int64, decidedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leave_requests
		SET status = $3, decided_by = $4, decided_at = $5, updated_at = now()
		WHERE id = $1 AND company_id = $2 AND status = 'pending' AND deleted_at IS NULL`,
		id, companyID, status, decidedBy, decidedAt)
	if err != nil {
		return false, fmt.Errorf("decide leave request: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateLeave amends a pending request. The same WHERE guard as DecideLeave
// keeps decided requests immutable.
func (r *repository) UpdateLeave(ctx context.Context, companyID, id int64, updates map[string]any) (bool, error) {
	set := make([]string, 0, len(updates)+1)
	args := []any{id, companyID}
	for col, val := range updates {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	set = append(set, "updated_at = now()")

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE leave_requests SET %s
		WHERE id = $1 AND company_id = $2 AND status = 'pending' AND deleted_at IS NULL`,
		strings.Join(set, ", ")), args...)
	if err != nil {
		return false, fmt.Errorf("update leave request: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repository) SoftDeleteLeave(ctx context.Context, companyID, id, deletedBy int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leave_requests SET deleted_at = now(), deleted_by = $3
		WHERE id = $1 AND company_id = $2 AND status = 'pending' AND deleted_at IS NULL`,
		id, companyID, deletedBy)
	if err != nil {
		return false, fmt.Errorf("delete leave request: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repository) CheckIn(ctx context.Context, a Attendance) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO attendance (company_id, employee_id, day, check_in)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		a.CompanyID, a.EmployeeID, a.Day, a.CheckIn).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyCheckedIn
		}
		return 0, fmt.Errorf("insert attendance: %w", err)
	}
	return id, nil
}

func (r *repository) CheckOut(ctx context.Context, companyID, employeeID int64, day, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE attendance SET check_out = $4, updated_at = now()
		WHERE company_id = $1 AND employee_id = $2 AND day = $3 AND check_out IS NULL`,
		companyID, employeeID, day, at)
	if err != nil {
		return false, fmt.Errorf("check out: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repository) ListAttendance(ctx context.Context, companyID, employeeID int64, from, to time.Time) ([]Attendance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, employee_id, day, check_in, check_out, created_at, updated_at
		FROM attendance
		WHERE company_id = $1 AND employee_id = $2 AND day BETWEEN $3 AND $4
		ORDER BY day`, companyID, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var out []Attendance
	for rows.Next() {
		var a Attendance
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.EmployeeID, &a.Day,
			&a.CheckIn, &a.CheckOut, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
