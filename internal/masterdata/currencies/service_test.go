package currencies

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/shared"
)

type memCurrencies struct {
	currencies  map[int64]*Currency
	rates       map[int64][]Rate
	nextID      int64
	rateQueries int
}

func newMemCurrencies() *memCurrencies {
	return &memCurrencies{currencies: map[int64]*Currency{}, rates: map[int64][]Rate{}, nextID: 1}
}

func (m *memCurrencies) List(ctx context.Context, companyID int64) ([]Currency, error) {
	var out []Currency
	for _, c := range m.currencies {
		if c.CompanyID == companyID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memCurrencies) Get(ctx context.Context, companyID, id int64) (*Currency, error) {
	c, ok := m.currencies[id]
	if !ok || c.CompanyID != companyID {
		return nil, shared.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCurrencies) Create(ctx context.Context, c Currency) (int64, error) {
	for _, existing := range m.currencies {
		if existing.CompanyID == c.CompanyID && existing.Code == c.Code {
			return 0, ErrCodeTaken
		}
	}
	c.ID = m.nextID
	m.nextID++
	m.currencies[c.ID] = &c
	return c.ID, nil
}

func (m *memCurrencies) Update(ctx context.Context, companyID, id int64, updates map[string]any) error {
	c, ok := m.currencies[id]
	if !ok || c.CompanyID != companyID {
		return shared.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	if v, ok := updates["active"]; ok {
		c.Active = v.(bool)
	}
	return nil
}

func (m *memCurrencies) SoftDelete(ctx context.Context, companyID, id, deletedBy int64) error {
	c, ok := m.currencies[id]
	if !ok || c.CompanyID != companyID {
		return shared.ErrNotFound
	}
	delete(m.currencies, id)
	return nil
}

func (m *memCurrencies) SetRate(ctx context.Context, currencyID int64, rate decimal.Decimal, asOf time.Time) error {
	m.rates[currencyID] = append(m.rates[currencyID], Rate{CurrencyID: currencyID, Rate: rate, AsOf: asOf})
	return nil
}

func (m *memCurrencies) LatestRate(ctx context.Context, currencyID int64) (*Rate, error) {
	m.rateQueries++
	rates := m.rates[currencyID]
	if len(rates) == 0 {
		return nil, ErrNoRate
	}
	latest := rates[0]
	for _, r := range rates[1:] {
		if r.AsOf.After(latest.AsOf) {
			latest = r
		}
	}
	return &latest, nil
}

func newTestCurrencies(t *testing.T) (*Service, *memCurrencies) {
	t.Helper()
	mr := miniredis.RunT(t)
	repo := newMemCurrencies()
	svc := NewService(repo, redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	return svc, repo
}

func testScope() shared.Scope {
	return shared.Scope{UserID: 7, CompanyID: 1}
}

func TestCreateValidatesISOCode(t *testing.T) {
	svc, _ := newTestCurrencies(t)

	c, err := svc.Create(context.Background(), testScope(), CreateCurrencyRequest{Code: "usd", Name: "US Dollar"})
	require.NoError(t, err)
	require.Equal(t, "USD", c.Code)
	require.Equal(t, 2, c.DecimalPlaces)

	_, err = svc.Create(context.Background(), testScope(), CreateCurrencyRequest{Code: "ZZZ", Name: "Nope"})
	require.ErrorIs(t, err, ErrUnknownCode)
}

func TestCreateDuplicateCode(t *testing.T) {
	svc, _ := newTestCurrencies(t)

	_, err := svc.Create(context.Background(), testScope(), CreateCurrencyRequest{Code: "EUR", Name: "Euro"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), testScope(), CreateCurrencyRequest{Code: "EUR", Name: "Euro"})
	require.ErrorIs(t, err, ErrCodeTaken)
}

func TestLatestRateCached(t *testing.T) {
	svc, repo := newTestCurrencies(t)
	c, err := svc.Create(context.Background(), testScope(), CreateCurrencyRequest{Code: "EUR", Name: "Euro"})
	require.NoError(t, err)

	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.SetRate(context.Background(), testScope(), c.ID, SetRateRequest{Rate: 1.08, AsOf: asOf}))

	for i := 0; i < 5; i++ {
		rate, err := svc.LatestRate(context.Background(), testScope(), c.ID)
		require.NoError(t, err)
		require.True(t, rate.Equal(decimal.RequireFromString("1.08")))
	}
	require.Equal(t, 1, repo.rateQueries)

	// A new rate invalidates the cache.
	require.NoError(t, svc.SetRate(context.Background(), testScope(), c.ID,
		SetRateRequest{Rate: 1.10, AsOf: asOf.AddDate(0, 0, 1)}))
	rate, err := svc.LatestRate(context.Background(), testScope(), c.ID)
	require.NoError(t, err)
	require.True(t, rate.Equal(decimal.RequireFromString("1.1")))
	require.Equal(t, 2, repo.rateQueries)
}

func TestLatestRateMissing(t *testing.T) {
	svc, _ := newTestCurrencies(t)
	c, err := svc.Create(context.Background(), testScope(), CreateCurrencyRequest{Code: "GBP", Name: "Pound"})
	require.NoError(t, err)

	_, err = svc.LatestRate(context.Background(), testScope(), c.ID)
	require.ErrorIs(t, err, ErrNoRate)
}
