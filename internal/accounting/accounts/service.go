package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meridian-erp/meridian/internal/shared"
)

// ErrHasChildren blocks deleting an account that still has sub-accounts.
var ErrHasChildren = errors.New("account has sub-accounts")

type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

func (s *Service) List(ctx context.Context, scope shared.Scope, accountType string) ([]Account, error) {
	return s.repo.List(ctx, scope.CompanyID, accountType)
}

func (s *Service) Get(ctx context.Context, scope shared.Scope, id int64) (*Account, error) {
	return s.repo.Get(ctx, scope.CompanyID, id)
}

// Create adds an account; a parent must exist, belong to the same company
// and carry the same type.
func (s *Service) Create(ctx context.Context, scope shared.Scope, req CreateAccountRequest) (*Account, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	if req.ParentID != nil {
		parent, err := s.repo.Get(ctx, scope.CompanyID, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Type != Type(req.Type) {
			return nil, fmt.Errorf("parent account is %s: %w", parent.Type, shared.ErrValidation)
		}
	}
	id, err := s.repo.Create(ctx, Account{
		CompanyID: scope.CompanyID,
		Code:      strings.ToUpper(req.Code),
		Name:      req.Name,
		Type:      Type(req.Type),
		ParentID:  req.ParentID,
		CreatedBy: scope.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, scope, "account.create", id)
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Update(ctx context.Context, scope shared.Scope, id int64, req UpdateAccountRequest) (*Account, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	updates := map[string]any{"updated_by": scope.UserID}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, fmt.Errorf("account cannot be its own parent: %w", shared.ErrValidation)
		}
		if _, err := s.repo.Get(ctx, scope.CompanyID, *req.ParentID); err != nil {
			return nil, err
		}
		updates["parent_id"] = *req.ParentID
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := s.repo.Update(ctx, scope.CompanyID, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, scope, "account.update", id)
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Delete(ctx context.Context, scope shared.Scope, id int64) error {
	if !scope.Valid() {
		return shared.ErrScopeMissing
	}
	hasChildren, err := s.repo.HasChildren(ctx, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return ErrHasChildren
	}
	if err := s.repo.SoftDelete(ctx, scope.CompanyID, id, scope.UserID); err != nil {
		return err
	}
	s.record(ctx, scope, "account.delete", id)
	return nil
}

func (s *Service) record(ctx context.Context, scope shared.Scope, action shared.Action, id int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  scope.UserID,
		Action:   action,
		Entity:   "account",
		EntityID: fmt.Sprintf("%d", id),
		At:       s.now(),
	})
}
