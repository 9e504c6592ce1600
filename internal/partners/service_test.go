package partners

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/shared"
)

type memPartners struct {
	partners map[int64]*Partner
	nextID   int64
}

func newMemPartners() *memPartners {
	return &memPartners{partners: map[int64]*Partner{}, nextID: 1}
}

func (m *memPartners) List(ctx context.Context, req ListPartnersRequest) ([]Partner, int, error) {
	var out []Partner
	for _, p := range m.partners {
		if p.CompanyID == req.CompanyID && p.Kind == req.Kind {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (m *memPartners) Get(ctx context.Context, companyID int64, kind Kind, id int64) (*Partner, error) {
	p, ok := m.partners[id]
	if !ok || p.CompanyID != companyID || p.Kind != kind {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPartners) Create(ctx context.Context, p Partner) (int64, error) {
	for _, existing := range m.partners {
		if existing.CompanyID == p.CompanyID && existing.Kind == p.Kind && existing.Code == p.Code {
			return 0, ErrCodeTaken
		}
	}
	p.ID = m.nextID
	m.nextID++
	p.CreatedAt = time.Now()
	m.partners[p.ID] = &p
	return p.ID, nil
}

func (m *memPartners) Update(ctx context.Context, companyID int64, kind Kind, id int64, updates map[string]any) error {
	p, ok := m.partners[id]
	if !ok || p.CompanyID != companyID || p.Kind != kind {
		return shared.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		p.Name = v.(string)
	}
	return nil
}

func (m *memPartners) SoftDelete(ctx context.Context, companyID int64, kind Kind, id, deletedBy int64) error {
	p, ok := m.partners[id]
	if !ok || p.CompanyID != companyID || p.Kind != kind {
		return shared.ErrNotFound
	}
	delete(m.partners, id)
	return nil
}

func partnerScope() shared.Scope {
	return shared.Scope{UserID: 7, CompanyID: 1}
}

func TestKindsAreIsolated(t *testing.T) {
	repo := newMemPartners()
	customers := NewService(KindCustomer, repo, nil)
	suppliers := NewService(KindSupplier, repo, nil)

	// The same code may exist once per kind.
	c, err := customers.Create(context.Background(), partnerScope(), CreatePartnerRequest{Code: "acme", Name: "Acme Ltd"})
	require.NoError(t, err)
	require.Equal(t, "ACME", c.Code)
	require.Equal(t, KindCustomer, c.Kind)

	sup, err := suppliers.Create(context.Background(), partnerScope(), CreatePartnerRequest{Code: "acme", Name: "Acme Supply"})
	require.NoError(t, err)
	require.Equal(t, KindSupplier, sup.Kind)

	// A customer id is not visible through the supplier endpoint.
	_, err = suppliers.Get(context.Background(), partnerScope(), c.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = customers.Create(context.Background(), partnerScope(), CreatePartnerRequest{Code: "ACME", Name: "Dup"})
	require.ErrorIs(t, err, ErrCodeTaken)
}

func TestCreditLimitDefaultsToZero(t *testing.T) {
	repo := newMemPartners()
	customers := NewService(KindCustomer, repo, nil)

	c, err := customers.Create(context.Background(), partnerScope(), CreatePartnerRequest{Code: "C1", Name: "Customer"})
	require.NoError(t, err)
	require.True(t, c.CreditLimit.IsZero())
}
