package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/shared"
)

// ErrCodeTaken is returned for a duplicate country code.
var ErrCodeTaken = errors.New("country code already in use")

// Repository encapsulates DB operations for geography reference data.
// The tables are global, not per company.
type Repository interface {
	ListCountries(ctx context.Context, search string) ([]Country, error)
	CreateCountry(ctx context.Context, c Country) (int64, error)
	GetCountry(ctx context.Context, id int64) (*Country, error)
	RenameCountry(ctx context.Context, id int64, name string) error
	DeleteCountry(ctx context.Context, id int64) error

	ListRegions(ctx context.Context, countryID int64) ([]Region, error)
	CreateRegion(ctx context.Context, r Region) (int64, error)
	GetRegion(ctx context.Context, id int64) (*Region, error)
	RenameRegion(ctx context.Context, id int64, name string) error
	DeleteRegion(ctx context.Context, id int64) error

	ListCities(ctx context.Context, regionID int64) ([]City, error)
	CreateCity(ctx context.Context, c City) (int64, error)
	GetCity(ctx context.Context, id int64) (*City, error)
	RenameCity(ctx context.Context, id int64, name string) error
	DeleteCity(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListCountries(ctx context.Context, search string) ([]Country, error) {
	query := `SELECT id, code, name, created_at, updated_at FROM countries`
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += ` WHERE name ILIKE $1`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Country
	for rows.Next() {
		var c Country
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) CreateCountry(ctx context.Context, c Country) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO countries (code, name) VALUES ($1,$2) RETURNING id`,
		c.Code, c.Name).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%s: %w", c.Code, ErrCodeTaken)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) GetCountry(ctx context.Context, id int64) (*Country, error) {
	var c Country
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, created_at, updated_at FROM countries WHERE id = $1`,
		id).Scan(&c.ID, &c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) DeleteCountry(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "countries", id)
}

func (r *repository) ListRegions(ctx context.Context, countryID int64) ([]Region, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, country_id, name, created_at, updated_at FROM regions
		 WHERE country_id = $1 ORDER BY name`, countryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Region
	for rows.Next() {
		var reg Region
		if err := rows.Scan(&reg.ID, &reg.CountryID, &reg.Name, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func (r *repository) CreateRegion(ctx context.Context, reg Region) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO regions (country_id, name) VALUES ($1,$2) RETURNING id`,
		reg.CountryID, reg.Name).Scan(&id)
	return id, err
}

func (r *repository) GetRegion(ctx context.Context, id int64) (*Region, error) {
	var reg Region
	err := r.pool.QueryRow(ctx,
		`SELECT id, country_id, name, created_at, updated_at FROM regions WHERE id = $1`,
		id).Scan(&reg.ID, &reg.CountryID, &reg.Name, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (r *repository) DeleteRegion(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "regions", id)
}

func (r *repository) ListCities(ctx context.Context, regionID int64) ([]City, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, region_id, name, created_at, updated_at FROM cities
		 WHERE region_id = $1 ORDER BY name`, regionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []City
	for rows.Next() {
		var c City
		if err := rows.Scan(&c.ID, &c.RegionID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) CreateCity(ctx context.Context, c City) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO cities (region_id, name) VALUES ($1,$2) RETURNING id`,
		c.RegionID, c.Name).Scan(&id)
	return id, err
}

func (r *repository) GetCity(ctx context.Context, id int64) (*City, error) {
	var c City
	err := r.pool.QueryRow(ctx,
		`SELECT id, region_id, name, created_at, updated_at FROM cities WHERE id = $1`,
		id).Scan(&c.ID, &c.RegionID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) DeleteCity(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "cities", id)
}

func (r *repository) RenameCountry(ctx context.Context, id int64, name string) error {
	return r.renameByID(ctx, "countries", id, name)
}

func (r *repository) RenameRegion(ctx context.Context, id int64, name string) error {
	return r.renameByID(ctx, "regions", id, name)
}

func (r *repository) RenameCity(ctx context.Context, id int64, name string) error {
	return r.renameByID(ctx, "cities", id, name)
}

func (r *repository) renameByID(ctx context.Context, table string, id int64, name string) error {
	tag, err := r.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET name = $2, updated_at = now() WHERE id = $1`, table), id, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) deleteByID(ctx context.Context, table string, id int64) error {
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
