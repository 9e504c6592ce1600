package payments

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/billing/invoices"
	"github.com/meridian-erp/meridian/internal/billing/shared"
	internalShared "github.com/meridian-erp/meridian/internal/shared"
)

type memRepo struct {
	mu       sync.Mutex
	invoices map[int64]*invoices.Invoice
	payments map[int64]*Payment
	nextID   int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		invoices: map[int64]*invoices.Invoice{},
		payments: map[int64]*Payment{},
		nextID:   1,
	}
}

func (m *memRepo) addInvoice(id int64, status invoices.Status, total string) {
	m.invoices[id] = &invoices.Invoice{
		ID:        id,
		CompanyID: 1,
		Number:    "SAL-000001",
		Status:    status,
		Total:     decimal.RequireFromString(total),
	}
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.clone()
	if err := fn(ctx, m); err != nil {
		m.invoices, m.payments, m.nextID = snapshot.invoices, snapshot.payments, snapshot.nextID
		return err
	}
	return nil
}

func (m *memRepo) clone() *memRepo {
	cp := newMemRepo()
	cp.nextID = m.nextID
	for id, inv := range m.invoices {
		c := *inv
		cp.invoices[id] = &c
	}
	for id, p := range m.payments {
		c := *p
		cp.payments[id] = &c
	}
	return cp
}

func (m *memRepo) Get(ctx context.Context, companyID, id int64) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok || p.CompanyID != companyID {
		return nil, shared.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) List(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Payment
	for _, p := range m.payments {
		if p.CompanyID == req.CompanyID && (req.InvoiceID == 0 || p.InvoiceID == req.InvoiceID) {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) GetInvoiceForUpdate(ctx context.Context, companyID, invoiceID int64) (*invoices.Invoice, error) {
	inv, ok := m.invoices[invoiceID]
	if !ok || inv.CompanyID != companyID {
		return nil, shared.ErrInvoiceNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memRepo) GetPaymentForUpdate(ctx context.Context, companyID, id int64) (*Payment, error) {
	p, ok := m.payments[id]
	if !ok || p.CompanyID != companyID {
		return nil, shared.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	for _, existing := range m.payments {
		if existing.CompanyID == p.CompanyID && existing.Reference == p.Reference {
			return 0, shared.ErrDuplicateRef
		}
	}
	p.ID = m.nextID
	m.nextID++
	p.CreatedAt = time.Now()
	m.payments[p.ID] = &p
	return p.ID, nil
}

func (m *memRepo) UpdatePayment(ctx context.Context, id int64, updates map[string]any) error {
	p, ok := m.payments[id]
	if !ok {
		return shared.ErrPaymentNotFound
	}
	if v, ok := updates["amount"]; ok {
		p.Amount = v.(decimal.Decimal)
	}
	if v, ok := updates["notes"]; ok {
		notes := v.(string)
		p.Notes = &notes
	}
	return nil
}

func (m *memRepo) SoftDeletePayment(ctx context.Context, id, deletedBy int64) error {
	if _, ok := m.payments[id]; !ok {
		return shared.ErrPaymentNotFound
	}
	delete(m.payments, id)
	return nil
}

func (m *memRepo) SumActivePayments(ctx context.Context, invoiceID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range m.payments {
		if p.InvoiceID == invoiceID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (m *memRepo) SettleInvoice(ctx context.Context, invoiceID int64, paid decimal.Decimal, status invoices.Status) error {
	inv, ok := m.invoices[invoiceID]
	if !ok {
		return shared.ErrInvoiceNotFound
	}
	inv.PaidAmount = paid
	inv.Status = status
	return nil
}

func testScope() internalShared.Scope {
	return internalShared.Scope{UserID: 7, CompanyID: 1}
}

func payReq(invoiceID int64, amount float64) CreatePaymentRequest {
	return CreatePaymentRequest{
		InvoiceID:   invoiceID,
		Amount:      amount,
		PaymentDate: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
		Method:      "transfer",
	}
}

func TestPartialThenFullPayment(t *testing.T) {
	repo := newMemRepo()
	repo.addInvoice(1, invoices.StatusPosted, "100")
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), testScope(), payReq(1, 75))
	require.NoError(t, err)
	require.True(t, repo.invoices[1].PaidAmount.Equal(decimal.RequireFromString("75")))
	require.Equal(t, invoices.StatusPosted, repo.invoices[1].Status)

	_, err = svc.Create(context.Background(), testScope(), payReq(1, 25))
	require.NoError(t, err)
	require.True(t, repo.invoices[1].PaidAmount.Equal(decimal.RequireFromString("100")))
	require.Equal(t, invoices.StatusPaid, repo.invoices[1].Status)
}

func TestOverpaymentRejectedAndRolledBack(t *testing.T) {
	repo := newMemRepo()
	repo.addInvoice(1, invoices.StatusPosted, "100")
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), testScope(), payReq(1, 75))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), testScope(), payReq(1, 50))
	require.ErrorIs(t, err, shared.ErrOverpayment)

	// The rejected payment must not survive the rollback.
	require.Len(t, repo.payments, 1)
	require.True(t, repo.invoices[1].PaidAmount.Equal(decimal.RequireFromString("75")))
	require.Equal(t, invoices.StatusPosted, repo.invoices[1].Status)
}

func TestDeletePaymentReopensInvoice(t *testing.T) {
	repo := newMemRepo()
	repo.addInvoice(1, invoices.StatusPosted, "100")
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), testScope(), payReq(1, 75))
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), testScope(), payReq(1, 25))
	require.NoError(t, err)
	require.Equal(t, invoices.StatusPaid, repo.invoices[1].Status)

	require.NoError(t, svc.Delete(context.Background(), testScope(), second.ID))
	require.True(t, repo.invoices[1].PaidAmount.Equal(decimal.RequireFromString("75")))
	require.Equal(t, invoices.StatusPosted, repo.invoices[1].Status)
}

func TestUpdatePaymentResettles(t *testing.T) {
	repo := newMemRepo()
	repo.addInvoice(1, invoices.StatusPosted, "100")
	svc := NewService(repo, nil)

	p, err := svc.Create(context.Background(), testScope(), payReq(1, 75))
	require.NoError(t, err)

	// Raising the amount to the full total marks the invoice paid.
	amount := 100.0
	updated, err := svc.Update(context.Background(), testScope(), p.ID, UpdatePaymentRequest{Amount: &amount})
	require.NoError(t, err)
	require.True(t, updated.Amount.Equal(decimal.RequireFromString("100")))
	require.Equal(t, invoices.StatusPaid, repo.invoices[1].Status)

	// An amount past the total is rejected and rolled back.
	amount = 120
	_, err = svc.Update(context.Background(), testScope(), p.ID, UpdatePaymentRequest{Amount: &amount})
	require.ErrorIs(t, err, shared.ErrOverpayment)
	require.True(t, repo.invoices[1].PaidAmount.Equal(decimal.RequireFromString("100")))
}

func TestPaymentAgainstDraftInvoice(t *testing.T) {
	repo := newMemRepo()
	repo.addInvoice(1, invoices.StatusDraft, "100")
	svc := NewService(repo, nil)

	// A payment recorded before approval still settles paid_amount.
	_, err := svc.Create(context.Background(), testScope(), payReq(1, 75))
	require.NoError(t, err)
	require.True(t, repo.invoices[1].PaidAmount.Equal(decimal.RequireFromString("75")))
	require.Equal(t, invoices.StatusDraft, repo.invoices[1].Status)

	// Even settled in full, a draft stays draft; only approve moves it.
	_, err = svc.Create(context.Background(), testScope(), payReq(1, 25))
	require.NoError(t, err)
	require.True(t, repo.invoices[1].PaidAmount.Equal(decimal.RequireFromString("100")))
	require.Equal(t, invoices.StatusDraft, repo.invoices[1].Status)

	// The overpayment bound applies to drafts too.
	_, err = svc.Create(context.Background(), testScope(), payReq(1, 1))
	require.ErrorIs(t, err, shared.ErrOverpayment)
}

func TestPaymentOnCancelledInvoiceRejected(t *testing.T) {
	repo := newMemRepo()
	repo.addInvoice(1, invoices.StatusCancelled, "100")
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), testScope(), payReq(1, 10))
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestGeneratedReferenceWhenAbsent(t *testing.T) {
	repo := newMemRepo()
	repo.addInvoice(1, invoices.StatusPosted, "100")
	svc := NewService(repo, nil)

	p, err := svc.Create(context.Background(), testScope(), payReq(1, 10))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(p.Reference, "PAY-"))

	q, err := svc.Create(context.Background(), testScope(), payReq(1, 10))
	require.NoError(t, err)
	require.NotEqual(t, p.Reference, q.Reference)
}

func TestDuplicateReferenceRejected(t *testing.T) {
	repo := newMemRepo()
	repo.addInvoice(1, invoices.StatusPosted, "100")
	svc := NewService(repo, nil)

	req := payReq(1, 10)
	req.Reference = "BANK-42"
	_, err := svc.Create(context.Background(), testScope(), req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), testScope(), req)
	require.ErrorIs(t, err, shared.ErrDuplicateRef)
}

func TestPaymentUnknownInvoice(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	_, err := svc.Create(context.Background(), testScope(), payReq(99, 10))
	require.ErrorIs(t, err, shared.ErrInvoiceNotFound)
}
