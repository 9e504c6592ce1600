package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/shared"
)

// ErrRoleNameTaken is returned when a role name collides within a company.
var ErrRoleNameTaken = errors.New("role name already in use")

// Repository encapsulates DB operations for roles and assignments.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]Role, error)
	Get(ctx context.Context, companyID, id int64) (*Role, error)
	Create(ctx context.Context, role Role) (int64, error)
	Update(ctx context.Context, companyID, id int64, name, description *string, permissions *[]string) error
	Delete(ctx context.Context, companyID, id int64) error
	Assign(ctx context.Context, userID, roleID int64) error
	Unassign(ctx context.Context, userID, roleID int64) error
	PermissionsForUser(ctx context.Context, userID int64) ([]string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.company_id, r.name, r.description, r.created_by, r.created_at, r.updated_at,
		       COALESCE(array_agg(p.permission) FILTER (WHERE p.permission IS NOT NULL), '{}')
		FROM roles r
		LEFT JOIN role_permissions p ON p.role_id = r.id
		WHERE r.company_id = $1
		GROUP BY r.id
		ORDER BY r.name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.CompanyID, &role.Name, &role.Description,
			&role.CreatedBy, &role.CreatedAt, &role.UpdatedAt, &role.Permissions); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (*Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `
		SELECT r.id, r.company_id, r.name, r.description, r.created_by, r.created_at, r.updated_at,
		       COALESCE(array_agg(p.permission) FILTER (WHERE p.permission IS NOT NULL), '{}')
		FROM roles r
		LEFT JOIN role_permissions p ON p.role_id = r.id
		WHERE r.id = $1 AND r.company_id = $2
		GROUP BY r.id`, id, companyID).Scan(
		&role.ID, &role.CompanyID, &role.Name, &role.Description,
		&role.CreatedBy, &role.CreatedAt, &role.UpdatedAt, &role.Permissions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *repository) Create(ctx context.Context, role Role) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO roles (company_id, name, description, created_by)
		VALUES ($1,$2,$3,$4) RETURNING id`,
		role.CompanyID, role.Name, role.Description, role.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%s: %w", role.Name, ErrRoleNameTaken)
		}
		return 0, err
	}
	if err := insertPermissions(ctx, tx, id, role.Permissions); err != nil {
		return 0, err
	}
	return id, tx.Commit(ctx)
}

func (r *repository) Update(ctx context.Context, companyID, id int64, name, description *string, permissions *[]string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `UPDATE roles SET updated_at = NOW()`
	args := []any{}
	if name != nil {
		args = append(args, *name)
		query += fmt.Sprintf(`, name = $%d`, len(args))
	}
	if description != nil {
		args = append(args, *description)
		query += fmt.Sprintf(`, description = $%d`, len(args))
	}
	args = append(args, id, companyID)
	query += fmt.Sprintf(` WHERE id = $%d AND company_id = $%d`, len(args)-1, len(args))

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrRoleNameTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}

	if permissions != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return err
		}
		if err := insertPermissions(ctx, tx, id, *permissions); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM roles WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Assign(ctx context.Context, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
		userID, roleID)
	return err
}

func (r *repository) Unassign(ctx context.Context, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	return err
}

func (r *repository) PermissionsForUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT p.permission
		FROM user_roles ur
		JOIN role_permissions p ON p.role_id = ur.role_id
		WHERE ur.user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var perm string
		if err := rows.Scan(&perm); err != nil {
			return nil, err
		}
		out = append(out, perm)
	}
	return out, rows.Err()
}

func insertPermissions(ctx context.Context, tx pgx.Tx, roleID int64, permissions []string) error {
	batch := &pgx.Batch{}
	for _, perm := range permissions {
		batch.Queue(`INSERT INTO role_permissions (role_id, permission) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			roleID, perm)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range permissions {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}
