package branches

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/meridian-erp/meridian/internal/shared"
)

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

func (s *Service) List(ctx context.Context, scope shared.Scope, page, perPage int) ([]Branch, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	return s.repo.List(ctx, scope.CompanyID, page, perPage)
}

func (s *Service) Get(ctx context.Context, scope shared.Scope, id int64) (*Branch, error) {
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Create(ctx context.Context, scope shared.Scope, req CreateBranchRequest) (*Branch, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	id, err := s.repo.Create(ctx, Branch{
		CompanyID: scope.CompanyID,
		Code:      strings.ToUpper(req.Code),
		Name:      req.Name,
		Address:   req.Address,
		Phone:     req.Phone,
		CityID:    req.CityID,
		CreatedBy: scope.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, scope, "branch.create", id)
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Update(ctx context.Context, scope shared.Scope, id int64, req UpdateBranchRequest) (*Branch, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	updates := map[string]any{"updated_by": scope.UserID}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.CityID != nil {
		updates["city_id"] = *req.CityID
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := s.repo.Update(ctx, scope.CompanyID, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, scope, "branch.update", id)
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Delete(ctx context.Context, scope shared.Scope, id int64) error {
	if !scope.Valid() {
		return shared.ErrScopeMissing
	}
	if err := s.repo.SoftDelete(ctx, scope.CompanyID, id, scope.UserID); err != nil {
		return err
	}
	s.record(ctx, scope, "branch.delete", id)
	return nil
}

func (s *Service) record(ctx context.Context, scope shared.Scope, action shared.Action, id int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  scope.UserID,
		Action:   action,
		Entity:   "branch",
		EntityID: fmt.Sprintf("%d", id),
		At:       s.now(),
	})
}
