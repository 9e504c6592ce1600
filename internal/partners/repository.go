package partners

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/shared"
)

// ErrCodeTaken is returned when a partner code collides within a company
// and kind.
var ErrCodeTaken = errors.New("partner code already in use")

// Repository encapsulates DB operations for partners.
type Repository interface {
	List(ctx context.Context, req ListPartnersRequest) ([]Partner, int, error)
	Get(ctx context.Context, companyID int64, kind Kind, id int64) (*Partner, error)
	Create(ctx context.Context, p Partner) (int64, error)
	Update(ctx context.Context, companyID int64, kind Kind, id int64, updates map[string]any) error
	SoftDelete(ctx context.Context, companyID int64, kind Kind, id, deletedBy int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const partnerColumns = `id, company_id, kind, code, name, tax_number, email, phone, address,
	city_id, credit_limit, active, created_by, updated_by, created_at, updated_at`

func scanPartner(row pgx.Row) (*Partner, error) {
	var p Partner
	err := row.Scan(&p.ID, &p.CompanyID, &p.Kind, &p.Code, &p.Name, &p.TaxNumber, &p.Email,
		&p.Phone, &p.Address, &p.CityID, &p.CreditLimit, &p.Active,
		&p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, req ListPartnersRequest) ([]Partner, int, error) {
	where := `WHERE company_id = $1 AND kind = $2 AND deleted_at IS NULL`
	args := []any{req.CompanyID, req.Kind}
	if req.Search != "" {
		args = append(args, "%"+req.Search+"%")
		where += fmt.Sprintf(` AND (name ILIKE $%d OR code ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM partners `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.PerPage, (req.Page-1)*req.PerPage)
	query := fmt.Sprintf(`SELECT %s FROM partners %s ORDER BY name LIMIT $%d OFFSET $%d`,
		partnerColumns, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID int64, kind Kind, id int64) (*Partner, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+partnerColumns+` FROM partners
		 WHERE id = $1 AND company_id = $2 AND kind = $3 AND deleted_at IS NULL`,
		id, companyID, kind)
	return scanPartner(row)
}

func (r *repository) Create(ctx context.Context, p Partner) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO partners (company_id, kind, code, name, tax_number, email, phone, address,
			city_id, credit_limit, active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,true,$11)
		RETURNING id`,
		p.CompanyID, p.Kind, p.Code, p.Name, p.TaxNumber, p.Email, p.Phone, p.Address,
		p.CityID, p.CreditLimit, p.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%s: %w", p.Code, ErrCodeTaken)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, companyID int64, kind Kind, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := `UPDATE partners SET updated_at = NOW()`
	args := []any{}
	for _, field := range []string{
		"name", "tax_number", "email", "phone", "address", "city_id",
		"credit_limit", "active", "updated_by",
	} {
		if v, ok := updates[field]; ok {
			args = append(args, v)
			query += fmt.Sprintf(`, %s = $%d`, field, len(args))
		}
	}
	args = append(args, id, companyID, kind)
	query += fmt.Sprintf(` WHERE id = $%d AND company_id = $%d AND kind = $%d AND deleted_at IS NULL`,
		len(args)-2, len(args)-1, len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, companyID int64, kind Kind, id, deletedBy int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE partners SET deleted_at = NOW(), deleted_by = $4, updated_at = NOW()
		 WHERE id = $1 AND company_id = $2 AND kind = $3 AND deleted_at IS NULL`,
		id, companyID, kind, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
