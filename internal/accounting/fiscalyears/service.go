package fiscalyears

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meridian-erp/meridian/internal/shared"
)

var (
	// ErrOverlap blocks fiscal years whose ranges intersect.
	ErrOverlap = errors.New("fiscal year overlaps an existing one")
	// ErrAlreadyClosed is returned when closing a closed year.
	ErrAlreadyClosed = errors.New("fiscal year already closed")
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

func (s *Service) List(ctx context.Context, scope shared.Scope) ([]FiscalYear, error) {
	return s.repo.List(ctx, scope.CompanyID)
}

func (s *Service) Get(ctx context.Context, scope shared.Scope, id int64) (*FiscalYear, error) {
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Create(ctx context.Context, scope shared.Scope, req CreateFiscalYearRequest) (*FiscalYear, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	overlaps, err := s.repo.Overlapping(ctx, scope.CompanyID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, ErrOverlap
	}
	id, err := s.repo.Create(ctx, FiscalYear{
		CompanyID: scope.CompanyID,
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		CreatedBy: scope.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, scope, "fiscal_year.create", id)
	return s.repo.Get(ctx, scope.CompanyID, id)
}

// Close marks the year closed. Billing refuses new documents in a closed
// year, so this is the period lock.
func (s *Service) Close(ctx context.Context, scope shared.Scope, id int64) (*FiscalYear, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	closed, err := s.repo.Close(ctx, scope.CompanyID, id, scope.UserID)
	if err != nil {
		return nil, err
	}
	if !closed {
		fy, err := s.repo.Get(ctx, scope.CompanyID, id)
		if err != nil {
			return nil, err
		}
		if fy.Status == StatusClosed {
			return nil, fmt.Errorf("%s: %w", fy.Name, ErrAlreadyClosed)
		}
		return nil, shared.ErrNotFound
	}
	s.record(ctx, scope, "fiscal_year.close", id)
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) record(ctx context.Context, scope shared.Scope, action shared.Action, id int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  scope.UserID,
		Action:   action,
		Entity:   "fiscal_year",
		EntityID: fmt.Sprintf("%d", id),
		At:       s.now(),
	})
}
