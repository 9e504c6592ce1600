package branches

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/shared"
)

// ErrCodeTaken is returned when a branch code collides within a company.
var ErrCodeTaken = errors.New("branch code already in use")

// Repository encapsulates DB operations for branches.
type Repository interface {
	List(ctx context.Context, companyID int64, page, perPage int) ([]Branch, int, error)
	Get(ctx context.Context, companyID, id int64) (*Branch, error)
	Create(ctx context.Context, b Branch) (int64, error)
	Update(ctx context.Context, companyID, id int64, updates map[string]any) error
	SoftDelete(ctx context.Context, companyID, id, deletedBy int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const branchColumns = `id, company_id, code, name, address, phone, city_id, active,
	created_by, updated_by, created_at, updated_at`

func scanBranch(row pgx.Row) (*Branch, error) {
	var b Branch
	err := row.Scan(&b.ID, &b.CompanyID, &b.Code, &b.Name, &b.Address, &b.Phone, &b.CityID,
		&b.Active, &b.CreatedBy, &b.UpdatedBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) List(ctx context.Context, companyID int64, page, perPage int) ([]Branch, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM branches WHERE company_id = $1 AND deleted_at IS NULL`,
		companyID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+branchColumns+` FROM branches
		 WHERE company_id = $1 AND deleted_at IS NULL
		 ORDER BY code LIMIT $2 OFFSET $3`, companyID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (*Branch, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+branchColumns+` FROM branches
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID)
	return scanBranch(row)
}

func (r *repository) Create(ctx context.Context, b Branch) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO branches (company_id, code, name, address, phone, city_id, active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,true,$7)
		RETURNING id`,
		b.CompanyID, b.Code, b.Name, b.Address, b.Phone, b.CityID, b.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%s: %w", b.Code, ErrCodeTaken)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, companyID, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := `UPDATE branches SET updated_at = NOW()`
	args := []any{}
	for _, field := range []string{"name", "address", "phone", "city_id", "active", "updated_by"} {
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
		`UPDATE branches SET deleted_at = NOW(), deleted_by = $3, updated_at = NOW()
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
