package taxes

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

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

func (s *Service) List(ctx context.Context, scope shared.Scope) ([]Tax, error) {
	return s.repo.List(ctx, scope.CompanyID)
}

func (s *Service) Get(ctx context.Context, scope shared.Scope, id int64) (*Tax, error) {
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Create(ctx context.Context, scope shared.Scope, req CreateTaxRequest) (*Tax, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	id, err := s.repo.Create(ctx, Tax{
		CompanyID: scope.CompanyID,
		Name:      req.Name,
		Rate:      decimal.NewFromFloat(req.Rate),
		CreatedBy: scope.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, scope, "tax.create", id)
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Update(ctx context.Context, scope shared.Scope, id int64, req UpdateTaxRequest) (*Tax, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	updates := map[string]any{"updated_by": scope.UserID}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Rate != nil {
		updates["rate"] = decimal.NewFromFloat(*req.Rate)
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := s.repo.Update(ctx, scope.CompanyID, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, scope, "tax.update", id)
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Delete(ctx context.Context, scope shared.Scope, id int64) error {
	if !scope.Valid() {
		return shared.ErrScopeMissing
	}
	if err := s.repo.SoftDelete(ctx, scope.CompanyID, id, scope.UserID); err != nil {
		return err
	}
	s.record(ctx, scope, "tax.delete", id)
	return nil
}

func (s *Service) record(ctx context.Context, scope shared.Scope, action shared.Action, id int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  scope.UserID,
		Action:   action,
		Entity:   "tax",
		EntityID: fmt.Sprintf("%d", id),
		At:       s.now(),
	})
}
