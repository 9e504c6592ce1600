package journals

import (
	"context"
	"fmt"
	"strings"
	"time"

	internalShared "github.com/meridian-erp/meridian/internal/shared"
)

// AuditPort records journal mutations.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Service handles journal registry logic.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

func (s *Service) List(ctx context.Context, req ListJournalsRequest) ([]Journal, int, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PerPage <= 0 {
		req.PerPage = 20
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, scope internalShared.Scope, id int64) (*Journal, error) {
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Create(ctx context.Context, scope internalShared.Scope, req CreateJournalRequest) (*Journal, error) {
	if !scope.Valid() {
		return nil, internalShared.ErrScopeMissing
	}
	j := Journal{
		CompanyID:    scope.CompanyID,
		Code:         strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:         strings.TrimSpace(req.Name),
		Type:         DocumentType(req.Type),
		MaxDocuments: req.MaxDocuments,
		CreatedBy:    scope.UserID,
	}
	created, err := s.repo.Create(ctx, j)
	if err != nil {
		return nil, err
	}
	s.record(ctx, scope, "journal.create", created.ID, map[string]any{"code": created.Code, "type": created.Type})
	return created, nil
}

func (s *Service) Update(ctx context.Context, scope internalShared.Scope, id int64, req UpdateJournalRequest) (*Journal, error) {
	if !scope.Valid() {
		return nil, internalShared.ErrScopeMissing
	}
	updates := map[string]any{"updated_by": scope.UserID}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.MaxDocuments != nil {
		updates["max_documents"] = *req.MaxDocuments
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if err := s.repo.Update(ctx, scope.CompanyID, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, scope, "journal.update", id, nil)
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Delete(ctx context.Context, scope internalShared.Scope, id int64) error {
	if !scope.Valid() {
		return internalShared.ErrScopeMissing
	}
	if err := s.repo.SoftDelete(ctx, scope.CompanyID, id, scope.UserID); err != nil {
		return err
	}
	s.record(ctx, scope, "journal.delete", id, nil)
	return nil
}

func (s *Service) record(ctx context.Context, scope internalShared.Scope, action internalShared.Action, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  scope.UserID,
		Action:   action,
		Entity:   "journal",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
		At:       s.now(),
	})
}
