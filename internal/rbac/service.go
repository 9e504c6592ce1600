package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/meridian-erp/meridian/internal/shared"
)

// WildcardPermission grants everything.
const WildcardPermission = "*"

const permissionCacheTTL = time.Minute

// Service answers permission checks and manages roles. Per-user permission
// sets are cached in redis for a minute; singleflight keeps a burst of
// checks for one user down to a single query.
type Service struct {
	repo  Repository
	rdb   *redis.Client
	group singleflight.Group
}

func NewService(repo Repository, rdb *redis.Client) *Service {
	return &Service{repo: repo, rdb: rdb}
}

// Allowed reports whether the user holds the permission, directly or via
// the wildcard.
func (s *Service) Allowed(ctx context.Context, userID int64, permission string) (bool, error) {
	perms, err := s.permissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p == permission || p == WildcardPermission {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) permissions(ctx context.Context, userID int64) ([]string, error) {
	key := permissionKey(userID)
	if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var perms []string
		if json.Unmarshal(cached, &perms) == nil {
			return perms, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		perms, err := s.repo.PermissionsForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if payload, err := json.Marshal(perms); err == nil {
			_ = s.rdb.Set(ctx, key, payload, permissionCacheTTL).Err()
		}
		return perms, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (s *Service) ListRoles(ctx context.Context, scope shared.Scope) ([]Role, error) {
	return s.repo.List(ctx, scope.CompanyID)
}

func (s *Service) GetRole(ctx context.Context, scope shared.Scope, id int64) (*Role, error) {
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) CreateRole(ctx context.Context, scope shared.Scope, req CreateRoleRequest) (*Role, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	id, err := s.repo.Create(ctx, Role{
		CompanyID:   scope.CompanyID,
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
		CreatedBy:   scope.UserID,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) UpdateRole(ctx context.Context, scope shared.Scope, id int64, req UpdateRoleRequest) (*Role, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	if err := s.repo.Update(ctx, scope.CompanyID, id, req.Name, req.Description, req.Permissions); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) DeleteRole(ctx context.Context, scope shared.Scope, id int64) error {
	if !scope.Valid() {
		return shared.ErrScopeMissing
	}
	return s.repo.Delete(ctx, scope.CompanyID, id)
}

// AssignRole grants the role to the user and drops the cached permission
// set so the change takes effect immediately.
func (s *Service) AssignRole(ctx context.Context, scope shared.Scope, req AssignRoleRequest) error {
	if !scope.Valid() {
		return shared.ErrScopeMissing
	}
	if _, err := s.repo.Get(ctx, scope.CompanyID, req.RoleID); err != nil {
		return err
	}
	if err := s.repo.Assign(ctx, req.UserID, req.RoleID); err != nil {
		return err
	}
	return s.invalidate(ctx, req.UserID)
}

func (s *Service) UnassignRole(ctx context.Context, scope shared.Scope, req AssignRoleRequest) error {
	if !scope.Valid() {
		return shared.ErrScopeMissing
	}
	if err := s.repo.Unassign(ctx, req.UserID, req.RoleID); err != nil {
		return err
	}
	return s.invalidate(ctx, req.UserID)
}

func (s *Service) invalidate(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, permissionKey(userID)).Err()
}

func permissionKey(userID int64) string {
	return "rbac:perms:" + strconv.FormatInt(userID, 10)
}
