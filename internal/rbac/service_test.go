package rbac

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/shared"
)

type memRoles struct {
	roles       map[int64]*Role
	assignments map[int64]map[int64]bool
	nextID      int64
	queries     int
}

func newMemRoles() *memRoles {
	return &memRoles{roles: map[int64]*Role{}, assignments: map[int64]map[int64]bool{}, nextID: 1}
}

func (m *memRoles) List(ctx context.Context, companyID int64) ([]Role, error) {
	var out []Role
	for _, r := range m.roles {
		if r.CompanyID == companyID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRoles) Get(ctx context.Context, companyID, id int64) (*Role, error) {
	r, ok := m.roles[id]
	if !ok || r.CompanyID != companyID {
		return nil, shared.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRoles) Create(ctx context.Context, role Role) (int64, error) {
	role.ID = m.nextID
	m.nextID++
	m.roles[role.ID] = &role
	return role.ID, nil
}

func (m *memRoles) Update(ctx context.Context, companyID, id int64, name, description *string, permissions *[]string) error {
	r, ok := m.roles[id]
	if !ok || r.CompanyID != companyID {
		return shared.ErrNotFound
	}
	if name != nil {
		r.Name = *name
	}
	if description != nil {
		r.Description = description
	}
	if permissions != nil {
		r.Permissions = *permissions
	}
	return nil
}

func (m *memRoles) Delete(ctx context.Context, companyID, id int64) error {
	r, ok := m.roles[id]
	if !ok || r.CompanyID != companyID {
		return shared.ErrNotFound
	}
	delete(m.roles, id)
	return nil
}

func (m *memRoles) Assign(ctx context.Context, userID, roleID int64) error {
	if m.assignments[userID] == nil {
		m.assignments[userID] = map[int64]bool{}
	}
	m.assignments[userID][roleID] = true
	return nil
}

func (m *memRoles) Unassign(ctx context.Context, userID, roleID int64) error {
	delete(m.assignments[userID], roleID)
	return nil
}

func (m *memRoles) PermissionsForUser(ctx context.Context, userID int64) ([]string, error) {
	m.queries++
	var out []string
	for roleID := range m.assignments[userID] {
		if r, ok := m.roles[roleID]; ok {
			out = append(out, r.Permissions...)
		}
	}
	return out, nil
}

func newTestRBAC(t *testing.T) (*Service, *memRoles, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	repo := newMemRoles()
	svc := NewService(repo, redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return svc, repo, mr
}

func seedRole(t *testing.T, svc *Service, perms ...string) *Role {
	t.Helper()
	role, err := svc.CreateRole(context.Background(), shared.Scope{UserID: 1, CompanyID: 1}, CreateRoleRequest{
		Name:        "accountant",
		Permissions: perms,
	})
	require.NoError(t, err)
	return role
}

func TestAllowed(t *testing.T) {
	svc, _, _ := newTestRBAC(t)
	role := seedRole(t, svc, "invoices.read", "invoices.approve")
	scope := shared.Scope{UserID: 1, CompanyID: 1}

	require.NoError(t, svc.AssignRole(context.Background(), scope, AssignRoleRequest{UserID: 42, RoleID: role.ID}))

	ok, err := svc.Allowed(context.Background(), 42, "invoices.approve")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.Allowed(context.Background(), 42, "invoices.delete")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.Allowed(context.Background(), 99, "invoices.read")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWildcard(t *testing.T) {
	svc, _, _ := newTestRBAC(t)
	role := seedRole(t, svc, WildcardPermission)
	scope := shared.Scope{UserID: 1, CompanyID: 1}

	require.NoError(t, svc.AssignRole(context.Background(), scope, AssignRoleRequest{UserID: 42, RoleID: role.ID}))
	ok, err := svc.Allowed(context.Background(), 42, "anything.at.all")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPermissionCacheAndInvalidation(t *testing.T) {
	svc, repo, _ := newTestRBAC(t)
	role := seedRole(t, svc, "invoices.read")
	scope := shared.Scope{UserID: 1, CompanyID: 1}
	require.NoError(t, svc.AssignRole(context.Background(), scope, AssignRoleRequest{UserID: 42, RoleID: role.ID}))

	for i := 0; i < 5; i++ {
		_, err := svc.Allowed(context.Background(), 42, "invoices.read")
		require.NoError(t, err)
	}
	require.Equal(t, 1, repo.queries)

	// Unassign drops the cache, so the next check sees the change.
	require.NoError(t, svc.UnassignRole(context.Background(), scope, AssignRoleRequest{UserID: 42, RoleID: role.ID}))
	ok, err := svc.Allowed(context.Background(), 42, "invoices.read")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 2, repo.queries)
}

func TestCacheExpiry(t *testing.T) {
	svc, repo, mr := newTestRBAC(t)
	role := seedRole(t, svc, "invoices.read")
	scope := shared.Scope{UserID: 1, CompanyID: 1}
	require.NoError(t, svc.AssignRole(context.Background(), scope, AssignRoleRequest{UserID: 42, RoleID: role.ID}))

	_, err := svc.Allowed(context.Background(), 42, "invoices.read")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	_, err = svc.Allowed(context.Background(), 42, "invoices.read")
	require.NoError(t, err)
	require.Equal(t, 2, repo.queries)
}

func TestAssignUnknownRole(t *testing.T) {
	svc, _, _ := newTestRBAC(t)
	err := svc.AssignRole(context.Background(), shared.Scope{UserID: 1, CompanyID: 1},
		AssignRoleRequest{UserID: 42, RoleID: 99})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
