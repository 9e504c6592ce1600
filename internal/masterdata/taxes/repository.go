package taxes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/shared"
)

// Repository encapsulates DB operations for taxes.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]Tax, error)
	Get(ctx context.Context, companyID, id int64) (*Tax, error)
	Create(ctx context.Context, t Tax) (int64, error)
	Update(ctx context.Context, companyID, id int64, updates map[string]any) error
	SoftDelete(ctx context.Context, companyID, id, deletedBy int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const taxColumns = `id, company_id, name, rate, active, created_by, updated_by, created_at, updated_at`

func scanTax(row pgx.Row) (*Tax, error) {
	var t Tax
	err := row.Scan(&t.ID, &t.CompanyID, &t.Name, &t.Rate, &t.Active,
		&t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Tax, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taxColumns+` FROM taxes
		 WHERE company_id = $1 AND deleted_at IS NULL ORDER BY name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tax
	for rows.Next() {
		t, err := scanTax(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (*Tax, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+taxColumns+` FROM taxes
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID)
	return scanTax(row)
}

func (r *repository) Create(ctx context.Context, t Tax) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO taxes (company_id, name, rate, active, created_by)
		VALUES ($1,$2,$3,true,$4) RETURNING id`,
		t.CompanyID, t.Name, t.Rate, t.CreatedBy,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, companyID, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := `UPDATE taxes SET updated_at = NOW()`
	args := []any{}
	for _, field := range []string{"name", "rate", "active", "updated_by"} {
		if v, ok := updates[field]; ok {
			args = append(args, v)
			query += fmt.Sprintf(`, %s = $%d`, field, len(args))
		}
	}
	args = append(args, id, companyID)
	query += fmt.Sprintf(` WHERE id = $%d AND company_id = $%d AND deleted_at IS NULL`, len(args)-1, len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
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
		`UPDATE taxes SET deleted_at = NOW(), deleted_by = $3, updated_at = NOW()
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
