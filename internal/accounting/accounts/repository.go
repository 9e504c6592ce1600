package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/shared"
)

// ErrCodeTaken is returned when an account code collides within a company.
var ErrCodeTaken = errors.New("account code already in use")

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	List(ctx context.Context, companyID int64, accountType string) ([]Account, error)
	Get(ctx context.Context, companyID, id int64) (*Account, error)
	Create(ctx context.Context, a Account) (int64, error)
	Update(ctx context.Context, companyID, id int64, updates map[string]any) error
	SoftDelete(ctx context.Context, companyID, id, deletedBy int64) error
	HasChildren(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const accountColumns = `id, company_id, code, name, type, parent_id, active,
	created_by, updated_by, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.ParentID,
		&a.Active, &a.CreatedBy, &a.UpdatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) List(ctx context.Context, companyID int64, accountType string) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE company_id = $1 AND deleted_at IS NULL`
	args := []any{companyID}
	if accountType != "" {
		args = append(args, accountType)
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	query += ` ORDER BY code`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID)
	return scanAccount(row)
}

func (r *repository) Create(ctx context.Context, a Account) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (company_id, code, name, type, parent_id, active, created_by)
		VALUES ($1,$2,$3,$4,$5,true,$6) RETURNING id`,
		a.CompanyID, a.Code, a.Name, a.Type, a.ParentID, a.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%s: %w", a.Code, ErrCodeTaken)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, companyID, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := `UPDATE accounts SET updated_at = NOW()`
	args := []any{}
	for _, field := range []string{"name", "parent_id", "active", "updated_by"} {
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
		`UPDATE accounts SET deleted_at = NOW(), deleted_by = $3, updated_at = NOW()
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) HasChildren(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE parent_id = $1 AND deleted_at IS NULL)`,
		id).Scan(&exists)
	return exists, err
}
