package journals

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/billing/shared"
)

// Repository encapsulates DB operations for journals.
type Repository interface {
	List(ctx context.Context, req ListJournalsRequest) ([]Journal, int, error)
	Get(ctx context.Context, companyID, id int64) (*Journal, error)
	Create(ctx context.Context, j Journal) (*Journal, error)
	Update(ctx context.Context, companyID, id int64, updates map[string]any) error
	SoftDelete(ctx context.Context, companyID, id, deletedBy int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed journal repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const journalColumns = `id, company_id, code, name, type, current_number, max_documents, status, created_by, updated_by, created_at, updated_at`

func scanJournal(row pgx.Row) (*Journal, error) {
	var j Journal
	err := row.Scan(&j.ID, &j.CompanyID, &j.Code, &j.Name, &j.Type, &j.CurrentNumber,
		&j.MaxDocuments, &j.Status, &j.CreatedBy, &j.UpdatedBy, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrJournalNotFound
		}
		return nil, err
	}
	return &j, nil
}

func (r *repository) List(ctx context.Context, req ListJournalsRequest) ([]Journal, int, error) {
	where := `WHERE company_id = $1 AND deleted_at IS NULL`
	args := []any{req.CompanyID}
	if req.Type != "" {
		args = append(args, req.Type)
		where += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if req.Status != "" {
		args = append(args, req.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM journals `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.PerPage, (req.Page-1)*req.PerPage)
	query := fmt.Sprintf(`SELECT %s FROM journals %s ORDER BY code LIMIT $%d OFFSET $%d`,
		journalColumns, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Journal
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *j)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (*Journal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`,
		id, companyID)
	return scanJournal(row)
}

func (r *repository) Create(ctx context.Context, j Journal) (*Journal, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO journals (company_id, code, name, type, current_number, max_documents, status, created_by)
		VALUES ($1, $2, $3, $4, 0, $5, 'active', $6)
		RETURNING `+journalColumns,
		j.CompanyID, j.Code, j.Name, j.Type, j.MaxDocuments, j.CreatedBy)
	created, err := scanJournal(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("journal code %q: %w", j.Code, shared.ErrDuplicateCode)
		}
		return nil, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, companyID, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := `UPDATE journals SET updated_at = NOW()`
	args := []any{}
	for _, field := range []string{"name", "max_documents", "status", "updated_by"} {
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
		return shared.ErrJournalNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, companyID, id, deletedBy int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE journals SET deleted_at = NOW(), deleted_by = $3, updated_at = NOW()
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`,
		id, companyID, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrJournalNotFound
	}
	return nil
}
