package partners

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian/internal/shared"
)

type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages one partner kind; the customer and supplier endpoints
// each get their own instance over the same repository.
type Service struct {
	kind  Kind
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

func NewService(kind Kind, repo Repository, audit AuditPort) *Service {
	return &Service{kind: kind, repo: repo, audit: audit, now: time.Now}
}

func (s *Service) List(ctx context.Context, scope shared.Scope, search string, page, perPage int) ([]Partner, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	return s.repo.List(ctx, ListPartnersRequest{
		CompanyID: scope.CompanyID,
		Kind:      s.kind,
		Search:    search,
		Page:      page,
		PerPage:   perPage,
	})
}

func (s *Service) Get(ctx context.Context, scope shared.Scope, id int64) (*Partner, error) {
	return s.repo.Get(ctx, scope.CompanyID, s.kind, id)
}

func (s *Service) Create(ctx context.Context, scope shared.Scope, req CreatePartnerRequest) (*Partner, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	limit := decimal.Zero
	if req.CreditLimit != nil {
		limit = decimal.NewFromFloat(*req.CreditLimit)
	}
	id, err := s.repo.Create(ctx, Partner{
		CompanyID:   scope.CompanyID,
		Kind:        s.kind,
		Code:        strings.ToUpper(req.Code),
		Name:        req.Name,
		TaxNumber:   req.TaxNumber,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		CityID:      req.CityID,
		CreditLimit: limit,
		CreatedBy:   scope.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, scope, "create", id)
	return s.repo.Get(ctx, scope.CompanyID, s.kind, id)
}

func (s *Service) Update(ctx context.Context, scope shared.Scope, id int64, req UpdatePartnerRequest) (*Partner, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	updates := map[string]any{"updated_by": scope.UserID}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.TaxNumber != nil {
		updates["tax_number"] = *req.TaxNumber
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.CityID != nil {
		updates["city_id"] = *req.CityID
	}
	if req.CreditLimit != nil {
		updates["credit_limit"] = decimal.NewFromFloat(*req.CreditLimit)
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := s.repo.Update(ctx, scope.CompanyID, s.kind, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, scope, "update", id)
	return s.repo.Get(ctx, scope.CompanyID, s.kind, id)
}

func (s *Service) Delete(ctx context.Context, scope shared.Scope, id int64) error {
	if !scope.Valid() {
		return shared.ErrScopeMissing
	}
	if err := s.repo.SoftDelete(ctx, scope.CompanyID, s.kind, id, scope.UserID); err != nil {
		return err
	}
	s.record(ctx, scope, "delete", id)
	return nil
}

func (s *Service) record(ctx context.Context, scope shared.Scope, action shared.Action, id int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  scope.UserID,
		Action:   shared.Action(fmt.Sprintf("%s.%s", s.kind, action)),
		Entity:   string(s.kind),
		EntityID: fmt.Sprintf("%d", id),
		At:       s.now(),
	})
}
