package fiscalyears

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/shared"
)

// Repository encapsulates DB operations for fiscal years.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]FiscalYear, error)
	Get(ctx context.Context, companyID, id int64) (*FiscalYear, error)
	Create(ctx context.Context, fy FiscalYear) (int64, error)
	Overlapping(ctx context.Context, companyID int64, start, end time.Time) (bool, error)
	Close(ctx context.Context, companyID, id, closedBy int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const fyColumns = `id, company_id, name, start_date, end_date, status, closed_by, closed_at,
	created_by, created_at, updated_at`

func scanFiscalYear(row pgx.Row) (*FiscalYear, error) {
	var fy FiscalYear
	err := row.Scan(&fy.ID, &fy.CompanyID, &fy.Name, &fy.StartDate, &fy.EndDate, &fy.Status,
		&fy.ClosedBy, &fy.ClosedAt, &fy.CreatedBy, &fy.CreatedAt, &fy.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &fy, nil
}

func (r *repository) List(ctx context.Context, companyID int64) ([]FiscalYear, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+fyColumns+` FROM fiscal_years
		 WHERE company_id = $1 AND deleted_at IS NULL ORDER BY start_date DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FiscalYear
	for rows.Next() {
		fy, err := scanFiscalYear(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *fy)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (*FiscalYear, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+fyColumns+` FROM fiscal_years
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID)
	return scanFiscalYear(row)
}

func (r *repository) Create(ctx context.Context, fy FiscalYear) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO fiscal_years (company_id, name, start_date, end_date, status, created_by)
		VALUES ($1,$2,$3,$4,'open',$5) RETURNING id`,
		fy.CompanyID, fy.Name, fy.StartDate, fy.EndDate, fy.CreatedBy,
	).Scan(&id)
	return id, err
}

func (r *repository) Overlapping(ctx context.Context, companyID int64, start, end time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM fiscal_years
			WHERE company_id = $1 AND deleted_at IS NULL
			  AND start_date <= $3 AND end_date >= $2
		)`, companyID, start, end).Scan(&exists)
	return exists, err
}

// Close flips an open year to closed. The status guard lives in the WHERE
// clause so closing twice cannot overwrite the original closer.
func (r *repository) Close(ctx context.Context, companyID, id, closedBy int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE fiscal_years SET status = 'closed', closed_by = $3, closed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status = 'open' AND deleted_at IS NULL`,
		id, companyID, closedBy)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
