package invoices

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/billing/journals"
	"github.com/meridian-erp/meridian/internal/billing/shared"
	internalShared "github.com/meridian-erp/meridian/internal/shared"
)

type fakeJournal struct {
	code    string
	docType journals.DocumentType
	status  journals.Status
	current int64
	max     int64
}

// memRepo is an in-memory Repository plus TxRepository. The mutex stands in
// for the row lock the real UPDATE takes, so concurrent allocations are
// serialized the same way Postgres serializes them.
type memRepo struct {
	mu          sync.Mutex
	journals    map[int64]*fakeJournal
	invoices    map[int64]*Invoice
	lines       map[int64][]Line
	fiscalYears map[int64]string
	nextID      int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		journals:    map[int64]*fakeJournal{},
		invoices:    map[int64]*Invoice{},
		lines:       map[int64][]Line{},
		fiscalYears: map[int64]string{},
		nextID:      1,
	}
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m)
}

func (m *memRepo) Get(ctx context.Context, companyID, id int64) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(companyID, id)
}

func (m *memRepo) get(companyID, id int64) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.CompanyID != companyID {
		return nil, shared.ErrInvoiceNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memRepo) GetWithDetails(ctx context.Context, companyID, id int64) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, err := m.get(companyID, id)
	if err != nil {
		return nil, err
	}
	inv.Lines = append([]Line(nil), m.lines[id]...)
	return inv, nil
}

func (m *memRepo) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Invoice
	for _, inv := range m.invoices {
		if inv.CompanyID == req.CompanyID {
			out = append(out, *inv)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) AllocateJournalNumber(ctx context.Context, companyID, journalID int64) (*AllocatedNumber, error) {
	j, ok := m.journals[journalID]
	if !ok {
		return nil, shared.ErrJournalNotFound
	}
	if j.status == journals.StatusClosed {
		return nil, shared.ErrJournalClosed
	}
	if j.max > 0 && j.current >= j.max {
		return nil, shared.ErrJournalExhausted
	}
	j.current++
	return &AllocatedNumber{JournalCode: j.code, JournalType: j.docType, Sequence: j.current}, nil
}

func (m *memRepo) InsertInvoice(ctx context.Context, inv Invoice) (int64, error) {
	for _, existing := range m.invoices {
		if existing.Number == inv.Number {
			return 0, shared.ErrDuplicateNumber
		}
	}
	inv.ID = m.nextID
	m.nextID++
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	m.invoices[inv.ID] = &inv
	return inv.ID, nil
}

func (m *memRepo) InsertLines(ctx context.Context, invoiceID int64, lines []Line) error {
	for i := range lines {
		lines[i].InvoiceID = invoiceID
	}
	m.lines[invoiceID] = append(m.lines[invoiceID], lines...)
	return nil
}

func (m *memRepo) DeleteLines(ctx context.Context, invoiceID int64) error {
	m.lines[invoiceID] = nil
	return nil
}

func (m *memRepo) GetInvoiceForUpdate(ctx context.Context, companyID, id int64) (*Invoice, error) {
	return m.get(companyID, id)
}

func (m *memRepo) UpdateInvoice(ctx context.Context, id int64, updates map[string]any) error {
	inv, ok := m.invoices[id]
	if !ok {
		return shared.ErrInvoiceNotFound
	}
	for field, v := range updates {
		switch field {
		case "status":
			inv.Status = v.(Status)
		case "approved_by":
			u := v.(int64)
			inv.ApprovedBy = &u
		case "approved_at":
			t := v.(time.Time)
			inv.ApprovedAt = &t
		case "subtotal":
			inv.Subtotal = v.(decimal.Decimal)
		case "discount":
			inv.Discount = v.(decimal.Decimal)
		case "tax_total":
			inv.TaxTotal = v.(decimal.Decimal)
		case "total":
			inv.Total = v.(decimal.Decimal)
		case "notes":
			n := v.(string)
			inv.Notes = &n
		case "updated_by":
			u := v.(int64)
			inv.UpdatedBy = &u
		}
	}
	inv.UpdatedAt = time.Now()
	return nil
}

func (m *memRepo) SoftDeleteInvoice(ctx context.Context, companyID, id, deletedBy int64) error {
	inv, ok := m.invoices[id]
	if !ok || inv.CompanyID != companyID {
		return shared.ErrInvoiceNotFound
	}
	delete(m.invoices, id)
	delete(m.lines, id)
	return nil
}

func (m *memRepo) FiscalYearOpen(ctx context.Context, companyID, fiscalYearID int64) (bool, error) {
	return m.fiscalYears[fiscalYearID] == "open", nil
}

func testScope() internalShared.Scope {
	return internalShared.Scope{UserID: 7, CompanyID: 1}
}

func createReq(journalID int64) CreateInvoiceRequest {
	return CreateInvoiceRequest{
		JournalID:    journalID,
		Type:         "sale",
		CurrencyID:   1,
		ExchangeRate: 1,
		InvoiceDate:  time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Lines: []LineInput{
			{Description: "Widget", Quantity: 2, UnitPrice: 50, DiscountPct: 10, TaxPct: 11},
			{Description: "Gadget", Quantity: 1, UnitPrice: 30},
		},
	}
}

func TestCreateComputesTotalsAndAllocatesNumber(t *testing.T) {
	repo := newMemRepo()
	repo.journals[1] = &fakeJournal{code: "SAL", docType: journals.TypeSale, status: journals.StatusActive}
	svc := NewService(repo, nil)

	inv, err := svc.Create(context.Background(), testScope(), createReq(1))
	require.NoError(t, err)

	require.Equal(t, "SAL-000001", inv.Number)
	require.Equal(t, StatusDraft, inv.Status)
	require.Len(t, inv.Lines, 2)

	// 2x50 with 10% discount and 11% tax: 100 - 10 = 90, tax 9.90, total 99.90.
	// Plus an untaxed 30 line.
	require.True(t, inv.Subtotal.Equal(decimal.RequireFromString("130")), inv.Subtotal.String())
	require.True(t, inv.Discount.Equal(decimal.RequireFromString("10")), inv.Discount.String())
	require.True(t, inv.TaxTotal.Equal(decimal.RequireFromString("9.9")), inv.TaxTotal.String())
	require.True(t, inv.Total.Equal(decimal.RequireFromString("129.9")), inv.Total.String())

	second, err := svc.Create(context.Background(), testScope(), createReq(1))
	require.NoError(t, err)
	require.Equal(t, "SAL-000002", second.Number)
}

func TestCreateClosedJournal(t *testing.T) {
	repo := newMemRepo()
	repo.journals[1] = &fakeJournal{code: "SAL", docType: journals.TypeSale, status: journals.StatusClosed}
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), testScope(), createReq(1))
	require.ErrorIs(t, err, shared.ErrJournalClosed)
}

func TestCreateExhaustedJournal(t *testing.T) {
	repo := newMemRepo()
	repo.journals[1] = &fakeJournal{code: "SAL", docType: journals.TypeSale, status: journals.StatusActive, current: 3, max: 3}
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), testScope(), createReq(1))
	require.ErrorIs(t, err, shared.ErrJournalExhausted)
	require.EqualValues(t, 3, repo.journals[1].current)
}

func TestCreateTypeMismatch(t *testing.T) {
	repo := newMemRepo()
	repo.journals[1] = &fakeJournal{code: "PUR", docType: journals.TypePurchase, status: journals.StatusActive}
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), testScope(), createReq(1))
	require.ErrorIs(t, err, shared.ErrTypeMismatch)
}

func TestCreateClosedFiscalYear(t *testing.T) {
	repo := newMemRepo()
	repo.journals[1] = &fakeJournal{code: "SAL", docType: journals.TypeSale, status: journals.StatusActive}
	repo.fiscalYears[9] = "closed"
	svc := NewService(repo, nil)

	scope := testScope()
	fy := int64(9)
	scope.FiscalYearID = &fy
	_, err := svc.Create(context.Background(), scope, createReq(1))
	require.ErrorIs(t, err, shared.ErrFiscalYearClosed)
}

func TestUpdateReplacesLinesAndRecomputesTotals(t *testing.T) {
	repo := newMemRepo()
	repo.journals[1] = &fakeJournal{code: "SAL", docType: journals.TypeSale, status: journals.StatusActive}
	svc := NewService(repo, nil)

	inv, err := svc.Create(context.Background(), testScope(), createReq(1))
	require.NoError(t, err)

	newLines := []LineInput{{Description: "Replacement", Quantity: 1, UnitPrice: 200}}
	updated, err := svc.Update(context.Background(), testScope(), inv.ID, UpdateInvoiceRequest{Lines: &newLines})
	require.NoError(t, err)

	require.Len(t, updated.Lines, 1)
	require.Equal(t, "Replacement", updated.Lines[0].Description)
	require.True(t, updated.Total.Equal(decimal.RequireFromString("200")), updated.Total.String())
	require.True(t, updated.Discount.IsZero())
}

func TestUpdateEmptyLineSetRejected(t *testing.T) {
	repo := newMemRepo()
	repo.journals[1] = &fakeJournal{code: "SAL", docType: journals.TypeSale, status: journals.StatusActive}
	svc := NewService(repo, nil)

	inv, err := svc.Create(context.Background(), testScope(), createReq(1))
	require.NoError(t, err)

	empty := []LineInput{}
	_, err = svc.Update(context.Background(), testScope(), inv.ID, UpdateInvoiceRequest{Lines: &empty})
	require.ErrorIs(t, err, shared.ErrNoLines)
}

func TestApproveTransitionsOnce(t *testing.T) {
	repo := newMemRepo()
	repo.journals[1] = &fakeJournal{code: "SAL", docType: journals.TypeSale, status: journals.StatusActive}
	svc := NewService(repo, nil)
	fixed := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return fixed })

	inv, err := svc.Create(context.Background(), testScope(), createReq(1))
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), testScope(), inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPosted, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	require.EqualValues(t, 7, *approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)
	require.True(t, approved.ApprovedAt.Equal(fixed))

	_, err = svc.Approve(context.Background(), testScope(), inv.ID)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestApproveSettledDraftMarksPaid(t *testing.T) {
	repo := newMemRepo()
	repo.journals[1] = &fakeJournal{code: "SAL", docType: journals.TypeSale, status: journals.StatusActive}
	svc := NewService(repo, nil)

	inv, err := svc.Create(context.Background(), testScope(), createReq(1))
	require.NoError(t, err)
	repo.invoices[inv.ID].PaidAmount = repo.invoices[inv.ID].Total

	approved, err := svc.Approve(context.Background(), testScope(), inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
}

func TestUpdateCancelledInvoiceRejected(t *testing.T) {
	repo := newMemRepo()
	repo.journals[1] = &fakeJournal{code: "SAL", docType: journals.TypeSale, status: journals.StatusActive}
	svc := NewService(repo, nil)

	inv, err := svc.Create(context.Background(), testScope(), createReq(1))
	require.NoError(t, err)
	repo.invoices[inv.ID].Status = StatusCancelled

	notes := "late"
	_, err = svc.Update(context.Background(), testScope(), inv.ID, UpdateInvoiceRequest{Notes: &notes})
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestDeleteThenGet(t *testing.T) {
	repo := newMemRepo()
	repo.journals[1] = &fakeJournal{code: "SAL", docType: journals.TypeSale, status: journals.StatusActive}
	svc := NewService(repo, nil)

	inv, err := svc.Create(context.Background(), testScope(), createReq(1))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), testScope(), inv.ID))
	_, err = svc.Get(context.Background(), testScope(), inv.ID)
	require.ErrorIs(t, err, shared.ErrInvoiceNotFound)
}

func TestConcurrentCreatesAllocateDistinctNumbers(t *testing.T) {
	repo := newMemRepo()
	repo.journals[1] = &fakeJournal{code: "SAL", docType: journals.TypeSale, status: journals.StatusActive}
	svc := NewService(repo, nil)

	// Assertions happen after the goroutines have finished; failing inside
	// them would abort the wrong goroutine.
	const n = 25
	numbers := make(chan string, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := svc.Create(context.Background(), testScope(), createReq(1))
			if err != nil {
				errs <- err
				return
			}
			numbers <- inv.Number
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[string]bool{}
	for num := range numbers {
		require.False(t, seen[num], "duplicate number %s", num)
		seen[num] = true
	}
	require.Len(t, seen, n)
	require.EqualValues(t, n, repo.journals[1].current)
}

func TestCreateRequiresScope(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	_, err := svc.Create(context.Background(), internalShared.Scope{}, createReq(1))
	require.ErrorIs(t, err, internalShared.ErrScopeMissing)
}
