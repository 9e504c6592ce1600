package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian/internal/billing/invoices"
	"github.com/meridian-erp/meridian/internal/billing/shared"
	internalShared "github.com/meridian-erp/meridian/internal/shared"
)

// AuditPort records payment mutations.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Service reconciles payments against invoices. Every mutation locks the
// invoice row, recomputes paid_amount from the surviving payments and
// settles the invoice status before the transaction commits.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create registers a payment against an invoice. Cancelled documents take
// no payments; drafts accumulate them like posted invoices do. The sum of
// active payments may never exceed the invoice total; reaching it exactly
// marks a posted invoice paid.
func (s *Service) Create(ctx context.Context, scope internalShared.Scope, req CreatePaymentRequest) (*Payment, error) {
	if !scope.Valid() {
		return nil, internalShared.ErrScopeMissing
	}

	reference := req.Reference
	if reference == "" {
		reference = "PAY-" + uuid.NewString()
	}

	var paymentID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, scope.CompanyID, req.InvoiceID)
		if err != nil {
			return err
		}
		if inv.Status == invoices.StatusCancelled {
			return fmt.Errorf("invoice %s is %s: %w", inv.Number, inv.Status, shared.ErrInvalidStatus)
		}

		paymentID, err = tx.InsertPayment(ctx, Payment{
			CompanyID:   scope.CompanyID,
			InvoiceID:   req.InvoiceID,
			Reference:   reference,
			Amount:      decimal.NewFromFloat(req.Amount),
			PaymentDate: req.PaymentDate,
			Method:      Method(req.Method),
			AccountID:   req.AccountID,
			Notes:       req.Notes,
			CreatedBy:   scope.UserID,
		})
		if err != nil {
			return err
		}
		return s.settle(ctx, tx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, scope, "payment.create", paymentID, map[string]any{"invoice_id": req.InvoiceID})
	return s.repo.Get(ctx, scope.CompanyID, paymentID)
}

// Update amends a payment and resettles the invoice under the same lock,
// so an amount change is subject to the overpayment bound like a create.
func (s *Service) Update(ctx context.Context, scope internalShared.Scope, id int64, req UpdatePaymentRequest) (*Payment, error) {
	if !scope.Valid() {
		return nil, internalShared.ErrScopeMissing
	}

	updates := map[string]any{"updated_by": scope.UserID}
	if req.Amount != nil {
		updates["amount"] = decimal.NewFromFloat(*req.Amount)
	}
	if req.PaymentDate != nil {
		updates["payment_date"] = *req.PaymentDate
	}
	if req.Method != nil {
		updates["payment_method"] = Method(*req.Method)
	}
	if req.AccountID != nil {
		updates["account_id"] = *req.AccountID
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.GetPaymentForUpdate(ctx, scope.CompanyID, id)
		if err != nil {
			return err
		}
		inv, err := tx.GetInvoiceForUpdate(ctx, scope.CompanyID, p.InvoiceID)
		if err != nil {
			return err
		}
		if err := tx.UpdatePayment(ctx, id, updates); err != nil {
			return err
		}
		return s.settle(ctx, tx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, scope, "payment.update", id, nil)
	return s.repo.Get(ctx, scope.CompanyID, id)
}

// Delete removes a payment and settles the invoice against the remaining
// ledger. A fully paid invoice drops back to posted when the sum falls
// below its total.
func (s *Service) Delete(ctx context.Context, scope internalShared.Scope, id int64) error {
	if !scope.Valid() {
		return internalShared.ErrScopeMissing
	}

	var invoiceID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.GetPaymentForUpdate(ctx, scope.CompanyID, id)
		if err != nil {
			return err
		}
		invoiceID = p.InvoiceID

		inv, err := tx.GetInvoiceForUpdate(ctx, scope.CompanyID, p.InvoiceID)
		if err != nil {
			return err
		}
		if err := tx.SoftDeletePayment(ctx, id, scope.UserID); err != nil {
			return err
		}
		return s.settle(ctx, tx, inv)
	})
	if err != nil {
		return err
	}

	s.record(ctx, scope, "payment.delete", id, map[string]any{"invoice_id": invoiceID})
	return nil
}

func (s *Service) Get(ctx context.Context, scope internalShared.Scope, id int64) (*Payment, error) {
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) List(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PerPage <= 0 {
		req.PerPage = 20
	}
	return s.repo.List(ctx, req)
}

// settle recomputes paid_amount from the active payments, enforces the
// overpayment bound and writes the derived status. The invoice row is
// already locked by the caller.
func (s *Service) settle(ctx context.Context, tx TxRepository, inv *invoices.Invoice) error {
	paid, err := tx.SumActivePayments(ctx, inv.ID)
	if err != nil {
		return err
	}
	if paid.GreaterThan(inv.Total) {
		return fmt.Errorf("paid %s exceeds total %s: %w", paid, inv.Total, shared.ErrOverpayment)
	}

	status := inv.Status
	switch {
	case inv.Status == invoices.StatusDraft:
		// Drafts accumulate payments; only approve moves their status.
	case paid.Equal(inv.Total):
		status = invoices.StatusPaid
	case inv.Status == invoices.StatusPaid:
		status = invoices.StatusPosted
	}
	return tx.SettleInvoice(ctx, inv.ID, paid, status)
}

func (s *Service) record(ctx context.Context, scope internalShared.Scope, action internalShared.Action, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  scope.UserID,
		Action:   action,
		Entity:   "invoice_payment",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
		At:       s.now(),
	})
}
