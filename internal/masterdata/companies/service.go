package companies

import (
	"context"
	"fmt"
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

func (s *Service) List(ctx context.Context, page, perPage int) ([]Company, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	return s.repo.List(ctx, page, perPage)
}

func (s *Service) Get(ctx context.Context, id int64) (*Company, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, scope shared.Scope, req CreateCompanyRequest) (*Company, error) {
	id, err := s.repo.Create(ctx, Company{
		Name:       req.Name,
		LegalName:  req.LegalName,
		TaxNumber:  req.TaxNumber,
		CurrencyID: req.CurrencyID,
		CountryID:  req.CountryID,
		Address:    req.Address,
		Phone:      req.Phone,
		Email:      req.Email,
		CreatedBy:  scope.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, scope, "company.create", id)
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, scope shared.Scope, id int64, req UpdateCompanyRequest) (*Company, error) {
	updates := map[string]any{"updated_by": scope.UserID}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.LegalName != nil {
		updates["legal_name"] = *req.LegalName
	}
	if req.TaxNumber != nil {
		updates["tax_number"] = *req.TaxNumber
	}
	if req.CurrencyID != nil {
		updates["currency_id"] = *req.CurrencyID
	}
	if req.CountryID != nil {
		updates["country_id"] = *req.CountryID
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, scope, "company.update", id)
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, scope shared.Scope, id int64) error {
	if err := s.repo.SoftDelete(ctx, id, scope.UserID); err != nil {
		return err
	}
	s.record(ctx, scope, "company.delete", id)
	return nil
}

func (s *Service) record(ctx context.Context, scope shared.Scope, action shared.Action, id int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  scope.UserID,
		Action:   action,
		Entity:   "company",
		EntityID: fmt.Sprintf("%d", id),
		At:       s.now(),
	})
}
