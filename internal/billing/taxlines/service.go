package taxlines

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian/internal/billing/shared"
	internalShared "github.com/meridian-erp/meridian/internal/shared"
)

type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

func (s *Service) Create(ctx context.Context, scope internalShared.Scope, req CreateTaxLineRequest) (*TaxLine, error) {
	if !scope.Valid() {
		return nil, internalShared.ErrScopeMissing
	}
	ok, err := s.repo.InvoiceExists(ctx, scope.CompanyID, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrInvoiceNotFound
	}

	id, err := s.repo.Create(ctx, TaxLine{
		CompanyID: scope.CompanyID,
		InvoiceID: req.InvoiceID,
		TaxID:     req.TaxID,
		Name:      req.Name,
		Rate:      decimal.NewFromFloat(req.Rate),
		Amount:    decimal.NewFromFloat(req.Amount),
		CreatedBy: scope.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, scope, "invoice_tax.create", id)
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Update(ctx context.Context, scope internalShared.Scope, id int64, req UpdateTaxLineRequest) (*TaxLine, error) {
	if !scope.Valid() {
		return nil, internalShared.ErrScopeMissing
	}
	updates := map[string]any{"updated_by": scope.UserID}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Rate != nil {
		updates["rate"] = decimal.NewFromFloat(*req.Rate)
	}
	if req.Amount != nil {
		updates["amount"] = decimal.NewFromFloat(*req.Amount)
	}
	if err := s.repo.Update(ctx, scope.CompanyID, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, scope, "invoice_tax.update", id)
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Delete(ctx context.Context, scope internalShared.Scope, id int64) error {
	if !scope.Valid() {
		return internalShared.ErrScopeMissing
	}
	if err := s.repo.SoftDelete(ctx, scope.CompanyID, id, scope.UserID); err != nil {
		return err
	}
	s.record(ctx, scope, "invoice_tax.delete", id)
	return nil
}

func (s *Service) Get(ctx context.Context, scope internalShared.Scope, id int64) (*TaxLine, error) {
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) List(ctx context.Context, req ListTaxLinesRequest) ([]TaxLine, int, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PerPage <= 0 {
		req.PerPage = 20
	}
	return s.repo.List(ctx, req)
}

func (s *Service) record(ctx context.Context, scope internalShared.Scope, action internalShared.Action, id int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  scope.UserID,
		Action:   action,
		Entity:   "invoice_tax",
		EntityID: fmt.Sprintf("%d", id),
		At:       s.now(),
	})
}
