package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian/internal/billing/invoices"
	"github.com/meridian-erp/meridian/internal/billing/shared"
	"github.com/meridian-erp/meridian/internal/platform/db"
)

// Repository encapsulates DB operations for invoice payments.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, companyID, id int64) (*Payment, error)
	List(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error)
}

// TxRepository exposes the operations available inside one transaction. The
// invoice lock and the paid_amount recompute live here so every path that
// touches the payment ledger settles the aggregate before committing.
type TxRepository interface {
	GetInvoiceForUpdate(ctx context.Context, companyID, invoiceID int64) (*invoices.Invoice, error)
	GetPaymentForUpdate(ctx context.Context, companyID, id int64) (*Payment, error)
	InsertPayment(ctx context.Context, p Payment) (int64, error)
	UpdatePayment(ctx context.Context, id int64, updates map[string]any) error
	SoftDeletePayment(ctx context.Context, id, deletedBy int64) error
	SumActivePayments(ctx context.Context, invoiceID int64) (decimal.Decimal, error)
	SettleInvoice(ctx context.Context, invoiceID int64, paid decimal.Decimal, status invoices.Status) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed payment repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const paymentColumns = `id, company_id, invoice_id, reference, amount, payment_date,
	payment_method, account_id, notes, created_by, created_at, updated_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.CompanyID, &p.InvoiceID, &p.Reference, &p.Amount, &p.PaymentDate,
		&p.Method, &p.AccountID, &p.Notes, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (*Payment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM invoice_payments
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`,
		id, companyID)
	return scanPayment(row)
}

func (r *repository) List(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error) {
	where := `WHERE company_id = $1 AND deleted_at IS NULL`
	args := []any{req.CompanyID}
	if req.InvoiceID > 0 {
		args = append(args, req.InvoiceID)
		where += fmt.Sprintf(` AND invoice_id = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoice_payments `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.PerPage, (req.Page-1)*req.PerPage)
	query := fmt.Sprintf(`SELECT %s FROM invoice_payments %s ORDER BY payment_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		paymentColumns, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (t *txRepository) GetInvoiceForUpdate(ctx context.Context, companyID, invoiceID int64) (*invoices.Invoice, error) {
	var inv invoices.Invoice
	err := t.tx.QueryRow(ctx, `
		SELECT id, company_id, journal_id, invoice_number, status, total, paid_amount
		FROM invoices WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL FOR UPDATE`,
		invoiceID, companyID).Scan(&inv.ID, &inv.CompanyID, &inv.JournalID, &inv.Number,
		&inv.Status, &inv.Total, &inv.PaidAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (t *txRepository) GetPaymentForUpdate(ctx context.Context, companyID, id int64) (*Payment, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM invoice_payments
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL FOR UPDATE`,
		id, companyID)
	return scanPayment(row)
}

func (t *txRepository) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO invoice_payments (
			company_id, invoice_id, reference, amount, payment_date,
			payment_method, account_id, notes, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`,
		p.CompanyID, p.InvoiceID, p.Reference, p.Amount, p.PaymentDate,
		p.Method, p.AccountID, p.Notes, p.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("payment reference %q: %w", p.Reference, shared.ErrDuplicateRef)
		}
		return 0, err
	}
	return id, nil
}

func (t *txRepository) UpdatePayment(ctx context.Context, id int64, updates map[string]any) error {
	set := make([]string, 0, len(updates)+1)
	args := []any{id}
	for col, val := range updates {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	set = append(set, "updated_at = NOW()")

	tag, err := t.tx.Exec(ctx, fmt.Sprintf(
		`UPDATE invoice_payments SET %s WHERE id = $1 AND deleted_at IS NULL`,
		strings.Join(set, ", ")), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrPaymentNotFound
	}
	return nil
}

func (t *txRepository) SoftDeletePayment(ctx context.Context, id, deletedBy int64) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE invoice_payments SET deleted_at = NOW(), deleted_by = $2, updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`,
		id, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrPaymentNotFound
	}
	return nil
}

// SumActivePayments recomputes the settled amount from the ledger rather
// than adjusting the stored aggregate incrementally.
func (t *txRepository) SumActivePayments(ctx context.Context, invoiceID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := t.tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM invoice_payments
		 WHERE invoice_id = $1 AND deleted_at IS NULL`,
		invoiceID).Scan(&sum)
	return sum, err
}

func (t *txRepository) SettleInvoice(ctx context.Context, invoiceID int64, paid decimal.Decimal, status invoices.Status) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE invoices SET paid_amount = $2, status = $3, updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`,
		invoiceID, paid, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInvoiceNotFound
	}
	return nil
}
