package units

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/shared"
)

// ErrCodeTaken is returned when a unit code collides within a company.
var ErrCodeTaken = errors.New("unit code already in use")

// Repository encapsulates DB operations for units.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]Unit, error)
	Get(ctx context.Context, companyID, id int64) (*Unit, error)
	Create(ctx context.Context, u Unit) (int64, error)
	Update(ctx context.Context, companyID, id int64, name string, updatedBy int64) error
	SoftDelete(ctx context.Context, companyID, id, deletedBy int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const unitColumns = `id, company_id, code, name, created_by, updated_by, created_at, updated_at`

func scanUnit(row pgx.Row) (*Unit, error) {
	var u Unit
	err := row.Scan(&u.ID, &u.CompanyID, &u.Code, &u.Name,
		&u.CreatedBy, &u.UpdatedBy, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Unit, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+unitColumns+` FROM units
		 WHERE company_id = $1 AND deleted_at IS NULL ORDER BY code`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (*Unit, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+unitColumns+` FROM units
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID)
	return scanUnit(row)
}

func (r *repository) Create(ctx context.Context, u Unit) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO units (company_id, code, name, created_by)
		VALUES ($1,$2,$3,$4) RETURNING id`,
		u.CompanyID, u.Code, u.Name, u.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%s: %w", u.Code, ErrCodeTaken)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, companyID, id int64, name string, updatedBy int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE units SET name = $3, updated_by = $4, updated_at = NOW()
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`,
		id, companyID, name, updatedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, companyID, id, deletedBy int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE units SET deleted_at = NOW(), deleted_by = $3, updated_at = NOW()
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
