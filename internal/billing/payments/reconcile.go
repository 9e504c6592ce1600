package payments

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian/internal/billing/invoices"
)

// PaidAmountDrift describes an invoice whose stored paid_amount disagrees
// with the sum of its active payments.
type PaidAmountDrift struct {
	InvoiceID int64
	Stored    decimal.Decimal
	Actual    decimal.Decimal
}

// ReconcileStore finds and repairs paid_amount drift. It lives beside the
// payment queries so every statement touching invoice_payments is in one
// package.
type ReconcileStore interface {
	ListDrift(ctx context.Context) ([]PaidAmountDrift, error)
	Repair(ctx context.Context, invoiceID int64) error
}

type reconcileStore struct {
	pool *pgxpool.Pool
}

func NewReconcileStore(pool *pgxpool.Pool) ReconcileStore {
	return &reconcileStore{pool: pool}
}

func (r *reconcileStore) ListDrift(ctx context.Context) ([]PaidAmountDrift, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.id, i.paid_amount, COALESCE(SUM(p.amount), 0) AS actual
		FROM invoices i
		LEFT JOIN invoice_payments p ON p.invoice_id = i.id AND p.deleted_at IS NULL
		WHERE i.deleted_at IS NULL AND i.status IN ('draft', 'posted', 'paid')
		GROUP BY i.id, i.paid_amount
		HAVING i.paid_amount <> COALESCE(SUM(p.amount), 0)`)
	if err != nil {
		return nil, fmt.Errorf("list paid amount drift: %w", err)
	}
	defer rows.Close()

	var out []PaidAmountDrift
	for rows.Next() {
		var d PaidAmountDrift
		if err := rows.Scan(&d.InvoiceID, &d.Stored, &d.Actual); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Repair rewrites paid_amount from the payment sum and rederives the status
// under a row lock, so a concurrent payment cannot interleave. Draft
// invoices keep their status; only approve moves them forward.
func (r *reconcileStore) Repair(ctx context.Context, invoiceID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var total decimal.Decimal
	var status invoices.Status
	if err := tx.QueryRow(ctx,
		`SELECT total, status FROM invoices WHERE id = $1 FOR UPDATE`, invoiceID).Scan(&total, &status); err != nil {
		return fmt.Errorf("lock invoice %d: %w", invoiceID, err)
	}

	var actual decimal.Decimal
	if err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM invoice_payments
		WHERE invoice_id = $1 AND deleted_at IS NULL`, invoiceID).Scan(&actual); err != nil {
		return fmt.Errorf("sum payments for invoice %d: %w", invoiceID, err)
	}

	if status != invoices.StatusDraft {
		status = invoices.StatusPosted
		if actual.Equal(total) {
			status = invoices.StatusPaid
		}
	}
	if _, err := tx.Exec(ctx, `
		UPDATE invoices SET paid_amount = $2, status = $3, updated_at = now()
		WHERE id = $1`, invoiceID, actual, status); err != nil {
		return fmt.Errorf("repair invoice %d: %w", invoiceID, err)
	}
	return tx.Commit(ctx)
}
