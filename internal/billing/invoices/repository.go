package invoices

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/billing/journals"
	"github.com/meridian-erp/meridian/internal/billing/shared"
	"github.com/meridian-erp/meridian/internal/platform/db"
)

// Repository encapsulates DB operations for invoices.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, companyID, id int64) (*Invoice, error)
	GetWithDetails(ctx context.Context, companyID, id int64) (*Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
}

// TxRepository exposes the operations available inside one transaction.
// Journal allocation lives here rather than in the journals package because
// the counter increment must commit or roll back with the invoice insert.
type TxRepository interface {
	AllocateJournalNumber(ctx context.Context, companyID, journalID int64) (*AllocatedNumber, error)
	InsertInvoice(ctx context.Context, inv Invoice) (int64, error)
	InsertLines(ctx context.Context, invoiceID int64, lines []Line) error
	DeleteLines(ctx context.Context, invoiceID int64) error
	GetInvoiceForUpdate(ctx context.Context, companyID, id int64) (*Invoice, error)
	UpdateInvoice(ctx context.Context, id int64, updates map[string]any) error
	SoftDeleteInvoice(ctx context.Context, companyID, id, deletedBy int64) error
	FiscalYearOpen(ctx context.Context, companyID, fiscalYearID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed invoice repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const invoiceColumns = `id, company_id, branch_id, fiscal_year_id, journal_id, invoice_number,
	invoice_type, partner_id, currency_id, exchange_rate, invoice_date, due_date, status,
	subtotal, discount, tax_total, total, paid_amount, notes, approved_by, approved_at,
	created_by, updated_by, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.BranchID, &inv.FiscalYearID, &inv.JournalID,
		&inv.Number, &inv.Type, &inv.PartnerID, &inv.CurrencyID, &inv.ExchangeRate,
		&inv.InvoiceDate, &inv.DueDate, &inv.Status, &inv.Subtotal, &inv.Discount,
		&inv.TaxTotal, &inv.Total, &inv.PaidAmount, &inv.Notes, &inv.ApprovedBy,
		&inv.ApprovedAt, &inv.CreatedBy, &inv.UpdatedBy, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (*Invoice, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`,
		id, companyID)
	return scanInvoice(row)
}

func (r *repository) GetWithDetails(ctx context.Context, companyID, id int64) (*Invoice, error) {
	inv, err := r.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, invoice_id, description, unit_id, quantity, unit_price, discount_pct,
		       tax_pct, discount_amount, tax_amount, line_total, line_order
		FROM invoice_lines WHERE invoice_id = $1 AND deleted_at IS NULL ORDER BY line_order, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Description, &l.UnitID, &l.Quantity,
			&l.UnitPrice, &l.DiscountPct, &l.TaxPct, &l.DiscountAmount, &l.TaxAmount,
			&l.LineTotal, &l.LineOrder); err != nil {
			return nil, err
		}
		inv.Lines = append(inv.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	payRows, err := r.pool.Query(ctx, `
		SELECT id, reference, amount, payment_date, payment_method
		FROM invoice_payments WHERE invoice_id = $1 AND deleted_at IS NULL ORDER BY payment_date, id`, id)
	if err != nil {
		return nil, err
	}
	defer payRows.Close()
	for payRows.Next() {
		var p PaymentRow
		if err := payRows.Scan(&p.ID, &p.Reference, &p.Amount, &p.PaymentDate, &p.Method); err != nil {
			return nil, err
		}
		inv.Payments = append(inv.Payments, p)
	}
	if err := payRows.Err(); err != nil {
		return nil, err
	}

	taxRows, err := r.pool.Query(ctx, `
		SELECT id, name, rate, amount
		FROM invoice_taxes WHERE invoice_id = $1 AND deleted_at IS NULL ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer taxRows.Close()
	for taxRows.Next() {
		var t TaxRow
		if err := taxRows.Scan(&t.ID, &t.Name, &t.Rate, &t.Amount); err != nil {
			return nil, err
		}
		inv.TaxLines = append(inv.TaxLines, t)
	}
	return inv, taxRows.Err()
}

func (r *repository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	where := `WHERE company_id = $1 AND deleted_at IS NULL`
	args := []any{req.CompanyID}
	if req.JournalID > 0 {
		args = append(args, req.JournalID)
		where += fmt.Sprintf(` AND journal_id = $%d`, len(args))
	}
	if req.Status != "" {
		args = append(args, req.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if req.Type != "" {
		args = append(args, req.Type)
		where += fmt.Sprintf(` AND invoice_type = $%d`, len(args))
	}
	if req.Search != "" {
		args = append(args, "%"+req.Search+"%")
		where += fmt.Sprintf(` AND invoice_number ILIKE $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.PerPage, (req.Page-1)*req.PerPage)
	query := fmt.Sprintf(`SELECT %s FROM invoices %s ORDER BY invoice_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *inv)
	}
	return out, total, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

// AllocateJournalNumber bumps the journal counter atomically. The increment
// and the guard conditions run in a single UPDATE so two concurrent
// allocations can never observe the same counter value.
func (t *txRepository) AllocateJournalNumber(ctx context.Context, companyID, journalID int64) (*AllocatedNumber, error) {
	var alloc AllocatedNumber
	err := t.tx.QueryRow(ctx, `
		UPDATE journals
		SET current_number = current_number + 1, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL AND status = 'active'
		  AND (max_documents = 0 OR current_number < max_documents)
		RETURNING code, type, current_number`,
		journalID, companyID).Scan(&alloc.JournalCode, &alloc.JournalType, &alloc.Sequence)
	if err == nil {
		return &alloc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Zero rows: find out whether the journal is missing, closed or full.
	var status journals.Status
	var current, capacity int64
	err = t.tx.QueryRow(ctx,
		`SELECT status, current_number, max_documents FROM journals
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`,
		journalID, companyID).Scan(&status, &current, &capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrJournalNotFound
		}
		return nil, err
	}
	if status == journals.StatusClosed {
		return nil, shared.ErrJournalClosed
	}
	if capacity > 0 && current >= capacity {
		return nil, shared.ErrJournalExhausted
	}
	return nil, shared.ErrJournalNotFound
}

func (t *txRepository) InsertInvoice(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO invoices (
			company_id, branch_id, fiscal_year_id, journal_id, invoice_number, invoice_type,
			partner_id, currency_id, exchange_rate, invoice_date, due_date, status,
			subtotal, discount, tax_total, total, paid_amount, notes, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,0,$17,$18)
		RETURNING id`,
		inv.CompanyID, inv.BranchID, inv.FiscalYearID, inv.JournalID, inv.Number, inv.Type,
		inv.PartnerID, inv.CurrencyID, inv.ExchangeRate, inv.InvoiceDate, inv.DueDate, inv.Status,
		inv.Subtotal, inv.Discount, inv.TaxTotal, inv.Total, inv.Notes, inv.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("invoice number %q: %w", inv.Number, shared.ErrDuplicateNumber)
		}
		return 0, err
	}
	return id, nil
}

func (t *txRepository) InsertLines(ctx context.Context, invoiceID int64, lines []Line) error {
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(`
			INSERT INTO invoice_lines (
				invoice_id, description, unit_id, quantity, unit_price, discount_pct,
				tax_pct, discount_amount, tax_amount, line_total, line_order
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			invoiceID, l.Description, l.UnitID, l.Quantity, l.UnitPrice, l.DiscountPct,
			l.TaxPct, l.DiscountAmount, l.TaxAmount, l.LineTotal, l.LineOrder)
	}
	results := t.tx.SendBatch(ctx, batch)
	defer results.Close()
	for range lines {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert invoice line: %w", err)
		}
	}
	return nil
}

func (t *txRepository) DeleteLines(ctx context.Context, invoiceID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, invoiceID)
	return err
}

func (t *txRepository) GetInvoiceForUpdate(ctx context.Context, companyID, id int64) (*Invoice, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL FOR UPDATE`,
		id, companyID)
	return scanInvoice(row)
}

func (t *txRepository) UpdateInvoice(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := `UPDATE invoices SET updated_at = NOW()`
	args := []any{}
	for _, field := range []string{
		"partner_id", "currency_id", "exchange_rate", "invoice_date", "due_date", "notes",
		"subtotal", "discount", "tax_total", "total", "status", "approved_by", "approved_at",
		"updated_by",
	} {
		if v, ok := updates[field]; ok {
			args = append(args, v)
			query += fmt.Sprintf(`, %s = $%d`, field, len(args))
		}
	}
	args = append(args, id)
	query += fmt.Sprintf(` WHERE id = $%d AND deleted_at IS NULL`, len(args))

	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInvoiceNotFound
	}
	return nil
}

func (t *txRepository) SoftDeleteInvoice(ctx context.Context, companyID, id, deletedBy int64) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE invoices SET deleted_at = NOW(), deleted_by = $3, updated_at = NOW()
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`,
		id, companyID, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInvoiceNotFound
	}
	_, err = t.tx.Exec(ctx,
		`UPDATE invoice_lines SET deleted_at = NOW() WHERE invoice_id = $1 AND deleted_at IS NULL`, id)
	return err
}

func (t *txRepository) FiscalYearOpen(ctx context.Context, companyID, fiscalYearID int64) (bool, error) {
	var status string
	err := t.tx.QueryRow(ctx,
		`SELECT status FROM fiscal_years WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`,
		fiscalYearID, companyID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return status == "open", nil
}
