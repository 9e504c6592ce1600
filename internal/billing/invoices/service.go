package invoices

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian/internal/billing/journals"
	"github.com/meridian-erp/meridian/internal/billing/shared"
	internalShared "github.com/meridian-erp/meridian/internal/shared"
)

// AuditPort records invoice mutations.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Service handles the invoice lifecycle.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create allocates the next journal number and persists the invoice with its
// lines in one transaction. Totals are computed from the lines; aggregate
// fields supplied by the caller are ignored.
func (s *Service) Create(ctx context.Context, scope internalShared.Scope, req CreateInvoiceRequest) (*Invoice, error) {
	if !scope.Valid() {
		return nil, internalShared.ErrScopeMissing
	}
	if len(req.Lines) == 0 {
		return nil, shared.ErrNoLines
	}

	lines, totals := buildLines(req.Lines)

	var invoiceID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if scope.FiscalYearID != nil {
			open, err := tx.FiscalYearOpen(ctx, scope.CompanyID, *scope.FiscalYearID)
			if err != nil {
				return err
			}
			if !open {
				return shared.ErrFiscalYearClosed
			}
		}

		alloc, err := tx.AllocateJournalNumber(ctx, scope.CompanyID, req.JournalID)
		if err != nil {
			return err
		}
		if string(alloc.JournalType) != req.Type {
			return fmt.Errorf("journal %s issues %s documents: %w",
				alloc.JournalCode, alloc.JournalType, shared.ErrTypeMismatch)
		}

		inv := Invoice{
			CompanyID:    scope.CompanyID,
			BranchID:     scope.BranchID,
			FiscalYearID: scope.FiscalYearID,
			JournalID:    req.JournalID,
			Number:       FormatNumber(alloc.JournalCode, alloc.Sequence),
			Type:         journals.DocumentType(req.Type),
			PartnerID:    req.PartnerID,
			CurrencyID:   req.CurrencyID,
			ExchangeRate: decimal.NewFromFloat(req.ExchangeRate),
			InvoiceDate:  req.InvoiceDate,
			DueDate:      req.DueDate,
			Status:       StatusDraft,
			Subtotal:     totals.Subtotal,
			Discount:     totals.Discount,
			TaxTotal:     totals.TaxTotal,
			Total:        totals.Total,
			Notes:        req.Notes,
			CreatedBy:    scope.UserID,
		}
		invoiceID, err = tx.InsertInvoice(ctx, inv)
		if err != nil {
			return err
		}
		return tx.InsertLines(ctx, invoiceID, lines)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, scope, "invoice.create", invoiceID, map[string]any{"journal_id": req.JournalID})
	return s.repo.GetWithDetails(ctx, scope.CompanyID, invoiceID)
}

// Update merges header fields and, when lines are supplied, replaces the
// whole line set inside the same transaction, recomputing totals.
func (s *Service) Update(ctx context.Context, scope internalShared.Scope, id int64, req UpdateInvoiceRequest) (*Invoice, error) {
	if !scope.Valid() {
		return nil, internalShared.ErrScopeMissing
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.GetInvoiceForUpdate(ctx, scope.CompanyID, id)
		if err != nil {
			return err
		}
		if !existing.Status.CanEdit() {
			return fmt.Errorf("invoice is %s: %w", existing.Status, shared.ErrInvalidStatus)
		}

		updates := map[string]any{"updated_by": scope.UserID}
		if req.PartnerID != nil {
			updates["partner_id"] = *req.PartnerID
		}
		if req.CurrencyID != nil {
			updates["currency_id"] = *req.CurrencyID
		}
		if req.ExchangeRate != nil {
			updates["exchange_rate"] = decimal.NewFromFloat(*req.ExchangeRate)
		}
		if req.InvoiceDate != nil {
			updates["invoice_date"] = *req.InvoiceDate
		}
		if req.DueDate != nil {
			updates["due_date"] = *req.DueDate
		}
		if req.Notes != nil {
			updates["notes"] = *req.Notes
		}

		if req.Lines != nil {
			if len(*req.Lines) == 0 {
				return shared.ErrNoLines
			}
			lines, totals := buildLines(*req.Lines)
			if err := tx.DeleteLines(ctx, id); err != nil {
				return fmt.Errorf("replace lines: %w", err)
			}
			if err := tx.InsertLines(ctx, id, lines); err != nil {
				return fmt.Errorf("replace lines: %w", err)
			}
			updates["subtotal"] = totals.Subtotal
			updates["discount"] = totals.Discount
			updates["tax_total"] = totals.TaxTotal
			updates["total"] = totals.Total
		}

		return tx.UpdateInvoice(ctx, id, updates)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, scope, "invoice.update", id, nil)
	return s.repo.GetWithDetails(ctx, scope.CompanyID, id)
}

// Approve transitions a draft invoice to posted, stamping the approver.
// A draft that was already settled in full by payments goes straight to paid.
func (s *Service) Approve(ctx context.Context, scope internalShared.Scope, id int64) (*Invoice, error) {
	if !scope.Valid() {
		return nil, internalShared.ErrScopeMissing
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.GetInvoiceForUpdate(ctx, scope.CompanyID, id)
		if err != nil {
			return err
		}
		if !existing.Status.CanApprove() {
			return fmt.Errorf("invoice is %s: %w", existing.Status, shared.ErrInvalidStatus)
		}
		status := StatusPosted
		if existing.Total.GreaterThan(decimal.Zero) && existing.PaidAmount.Equal(existing.Total) {
			status = StatusPaid
		}
		return tx.UpdateInvoice(ctx, id, map[string]any{
			"status":      status,
			"approved_by": scope.UserID,
			"approved_at": s.now(),
			"updated_by":  scope.UserID,
		})
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, scope, "invoice.approve", id, nil)
	return s.repo.GetWithDetails(ctx, scope.CompanyID, id)
}

// Delete soft-deletes the invoice and its lines.
func (s *Service) Delete(ctx context.Context, scope internalShared.Scope, id int64) error {
	if !scope.Valid() {
		return internalShared.ErrScopeMissing
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SoftDeleteInvoice(ctx, scope.CompanyID, id, scope.UserID)
	})
	if err != nil {
		return err
	}
	s.record(ctx, scope, "invoice.delete", id, nil)
	return nil
}

func (s *Service) Get(ctx context.Context, scope internalShared.Scope, id int64) (*Invoice, error) {
	return s.repo.GetWithDetails(ctx, scope.CompanyID, id)
}

func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PerPage <= 0 {
		req.PerPage = 20
	}
	return s.repo.List(ctx, req)
}

// FormatNumber renders an allocated sequence as a document number.
func FormatNumber(journalCode string, sequence int64) string {
	return fmt.Sprintf("%s-%06d", journalCode, sequence)
}

func buildLines(inputs []LineInput) ([]Line, shared.InvoiceAmounts) {
	lines := make([]Line, 0, len(inputs))
	amounts := make([]shared.LineAmounts, 0, len(inputs))
	for i, in := range inputs {
		qty := decimal.NewFromFloat(in.Quantity)
		price := decimal.NewFromFloat(in.UnitPrice)
		discPct := decimal.NewFromFloat(in.DiscountPct)
		taxPct := decimal.NewFromFloat(in.TaxPct)
		a := shared.CalculateLine(qty, price, discPct, taxPct)
		amounts = append(amounts, a)
		lines = append(lines, Line{
			Description:    in.Description,
			UnitID:         in.UnitID,
			Quantity:       qty,
			UnitPrice:      price,
			DiscountPct:    discPct,
			TaxPct:         taxPct,
			DiscountAmount: a.Discount,
			TaxAmount:      a.Tax,
			LineTotal:      a.Total,
			LineOrder:      i + 1,
		})
	}
	return lines, shared.Aggregate(amounts)
}

func (s *Service) record(ctx context.Context, scope internalShared.Scope, action internalShared.Action, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  scope.UserID,
		Action:   action,
		Entity:   "invoice",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
		At:       s.now(),
	})
}
