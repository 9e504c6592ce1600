package currencies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian/internal/shared"
)

// ErrCodeTaken is returned when a currency code collides within a company.
var ErrCodeTaken = errors.New("currency code already in use")

// ErrNoRate is returned when no exchange rate has been recorded yet.
var ErrNoRate = errors.New("no exchange rate recorded")

// Repository encapsulates DB operations for currencies and their rates.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]Currency, error)
	Get(ctx context.Context, companyID, id int64) (*Currency, error)
	Create(ctx context.Context, c Currency) (int64, error)
	Update(ctx context.Context, companyID, id int64, updates map[string]any) error
	SoftDelete(ctx context.Context, companyID, id, deletedBy int64) error
	SetRate(ctx context.Context, currencyID int64, rate decimal.Decimal, asOf time.Time) error
	LatestRate(ctx context.Context, currencyID int64) (*Rate, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const currencyColumns = `id, company_id, code, name, symbol, decimal_places, active,
	created_by, updated_by, created_at, updated_at`

func scanCurrency(row pgx.Row) (*Currency, error) {
	var c Currency
	err := row.Scan(&c.ID, &c.CompanyID, &c.Code, &c.Name, &c.Symbol, &c.DecimalPlaces,
		&c.Active, &c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Currency, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+currencyColumns+` FROM currencies
		 WHERE company_id = $1 AND deleted_at IS NULL ORDER BY code`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Currency
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (*Currency, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+currencyColumns+` FROM currencies
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID)
	return scanCurrency(row)
}

func (r *repository) Create(ctx context.Context, c Currency) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO currencies (company_id, code, name, symbol, decimal_places, active, created_by)
		VALUES ($1,$2,$3,$4,$5,true,$6)
		RETURNING id`,
		c.CompanyID, c.Code, c.Name, c.Symbol, c.DecimalPlaces, c.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%s: %w", c.Code, ErrCodeTaken)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, companyID, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := `UPDATE currencies SET updated_at = NOW()`
	args := []any{}
	for _, field := range []string{"name", "symbol", "decimal_places", "active", "updated_by"} {
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
		`UPDATE currencies SET deleted_at = NOW(), deleted_by = $3, updated_at = NOW()
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetRate(ctx context.Context, currencyID int64, rate decimal.Decimal, asOf time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO exchange_rates (currency_id, rate, as_of)
		VALUES ($1,$2,$3)
		ON CONFLICT (currency_id, as_of) DO UPDATE SET rate = EXCLUDED.rate`,
		currencyID, rate, asOf)
	return err
}

func (r *repository) LatestRate(ctx context.Context, currencyID int64) (*Rate, error) {
	var rate Rate
	err := r.pool.QueryRow(ctx, `
		SELECT currency_id, rate, as_of FROM exchange_rates
		WHERE currency_id = $1 ORDER BY as_of DESC LIMIT 1`,
		currencyID).Scan(&rate.CurrencyID, &rate.Rate, &rate.AsOf)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRate
		}
		return nil, err
	}
	return &rate, nil
}
