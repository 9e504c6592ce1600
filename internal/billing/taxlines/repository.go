package taxlines

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/billing/shared"
)

// Repository encapsulates DB operations for invoice tax lines.
type Repository interface {
	List(ctx context.Context, req ListTaxLinesRequest) ([]TaxLine, int, error)
	Get(ctx context.Context, companyID, id int64) (*TaxLine, error)
	Create(ctx context.Context, line TaxLine) (int64, error)
	Update(ctx context.Context, companyID, id int64, updates map[string]any) error
	SoftDelete(ctx context.Context, companyID, id, deletedBy int64) error
	InvoiceExists(ctx context.Context, companyID, invoiceID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const taxLineColumns = `id, company_id, invoice_id, tax_id, name, rate, amount,
	created_by, updated_by, created_at, updated_at`

func scanTaxLine(row pgx.Row) (*TaxLine, error) {
	var l TaxLine
	err := row.Scan(&l.ID, &l.CompanyID, &l.InvoiceID, &l.TaxID, &l.Name, &l.Rate, &l.Amount,
		&l.CreatedBy, &l.UpdatedBy, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrTaxLineNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *repository) List(ctx context.Context, req ListTaxLinesRequest) ([]TaxLine, int, error) {
	where := `WHERE company_id = $1 AND deleted_at IS NULL`
	args := []any{req.CompanyID}
	if req.InvoiceID > 0 {
		args = append(args, req.InvoiceID)
		where += fmt.Sprintf(` AND invoice_id = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoice_taxes `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.PerPage, (req.Page-1)*req.PerPage)
	query := fmt.Sprintf(`SELECT %s FROM invoice_taxes %s ORDER BY id LIMIT $%d OFFSET $%d`,
		taxLineColumns, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []TaxLine
	for rows.Next() {
		l, err := scanTaxLine(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *l)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (*TaxLine, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+taxLineColumns+` FROM invoice_taxes
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`,
		id, companyID)
	return scanTaxLine(row)
}

func (r *repository) Create(ctx context.Context, line TaxLine) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO invoice_taxes (company_id, invoice_id, tax_id, name, rate, amount, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		line.CompanyID, line.InvoiceID, line.TaxID, line.Name, line.Rate, line.Amount, line.CreatedBy,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, companyID, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := `UPDATE invoice_taxes SET updated_at = NOW()`
	args := []any{}
	for _, field := range []string{"name", "rate", "amount", "updated_by"} {
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
		return shared.ErrTaxLineNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, companyID, id, deletedBy int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoice_taxes SET deleted_at = NOW(), deleted_by = $3, updated_at = NOW()
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`,
		id, companyID, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrTaxLineNotFound
	}
	return nil
}

func (r *repository) InvoiceExists(ctx context.Context, companyID, invoiceID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL)`,
		invoiceID, companyID).Scan(&exists)
	return exists, err
}
