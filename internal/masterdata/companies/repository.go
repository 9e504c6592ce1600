package companies

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/shared"
)

// Repository encapsulates DB operations for companies.
type Repository interface {
	List(ctx context.Context, page, perPage int) ([]Company, int, error)
	Get(ctx context.Context, id int64) (*Company, error)
	Create(ctx context.Context, c Company) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	SoftDelete(ctx context.Context, id, deletedBy int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const companyColumns = `id, name, legal_name, tax_number, currency_id, country_id,
	address, phone, email, active, created_by, updated_by, created_at, updated_at`

func scanCompany(row pgx.Row) (*Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.LegalName, &c.TaxNumber, &c.CurrencyID, &c.CountryID,
		&c.Address, &c.Phone, &c.Email, &c.Active, &c.CreatedBy, &c.UpdatedBy,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, page, perPage int) ([]Company, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM companies WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE deleted_at IS NULL
		 ORDER BY name LIMIT $1 OFFSET $2`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Company, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanCompany(row)
}

func (r *repository) Create(ctx context.Context, c Company) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO companies (name, legal_name, tax_number, currency_id, country_id,
			address, phone, email, active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,true,$9)
		RETURNING id`,
		c.Name, c.LegalName, c.TaxNumber, c.CurrencyID, c.CountryID,
		c.Address, c.Phone, c.Email, c.CreatedBy,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := `UPDATE companies SET updated_at = NOW()`
	args := []any{}
	for _, field := range []string{
		"name", "legal_name", "tax_number", "currency_id", "country_id",
		"address", "phone", "email", "active", "updated_by",
	} {
		if v, ok := updates[field]; ok {
			args = append(args, v)
			query += fmt.Sprintf(`, %s = $%d`, field, len(args))
		}
	}
	args = append(args, id)
	query += fmt.Sprintf(` WHERE id = $%d AND deleted_at IS NULL`, len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id, deletedBy int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE companies SET deleted_at = NOW(), deleted_by = $2, updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
