package fiscalyears

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/shared"
)

type memFY struct {
	years  map[int64]*FiscalYear
	nextID int64
}

func newMemFY() *memFY {
	return &memFY{years: map[int64]*FiscalYear{}, nextID: 1}
}

func (m *memFY) List(ctx context.Context, companyID int64) ([]FiscalYear, error) {
	var out []FiscalYear
	for _, fy := range m.years {
		if fy.CompanyID == companyID {
			out = append(out, *fy)
		}
	}
	return out, nil
}

func (m *memFY) Get(ctx context.Context, companyID, id int64) (*FiscalYear, error) {
	fy, ok := m.years[id]
	if !ok || fy.CompanyID != companyID {
		return nil, shared.ErrNotFound
	}
	cp := *fy
	return &cp, nil
}

func (m *memFY) Create(ctx context.Context, fy FiscalYear) (int64, error) {
	fy.ID = m.nextID
	m.nextID++
	fy.Status = StatusOpen
	m.years[fy.ID] = &fy
	return fy.ID, nil
}

func (m *memFY) Overlapping(ctx context.Context, companyID int64, start, end time.Time) (bool, error) {
	for _, fy := range m.years {
		if fy.CompanyID == companyID && !fy.StartDate.After(end) && !fy.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memFY) Close(ctx context.Context, companyID, id, closedBy int64) (bool, error) {
	fy, ok := m.years[id]
	if !ok || fy.CompanyID != companyID || fy.Status != StatusOpen {
		return false, nil
	}
	now := time.Now()
	fy.Status = StatusClosed
	fy.ClosedBy = &closedBy
	fy.ClosedAt = &now
	return true, nil
}

func fyScope() shared.Scope {
	return shared.Scope{UserID: 7, CompanyID: 1}
}

func fyReq(name string, year int) CreateFiscalYearRequest {
	return CreateFiscalYearRequest{
		Name:      name,
		StartDate: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateAndClose(t *testing.T) {
	svc := NewService(newMemFY(), nil)

	fy, err := svc.Create(context.Background(), fyScope(), fyReq("FY2026", 2026))
	require.NoError(t, err)
	require.Equal(t, StatusOpen, fy.Status)

	closed, err := svc.Close(context.Background(), fyScope(), fy.ID)
	require.NoError(t, err)
	require.Equal(t, StatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedBy)
	require.EqualValues(t, 7, *closed.ClosedBy)

	_, err = svc.Close(context.Background(), fyScope(), fy.ID)
	require.ErrorIs(t, err, ErrAlreadyClosed)
}

func TestCreateOverlapRejected(t *testing.T) {
	svc := NewService(newMemFY(), nil)

	_, err := svc.Create(context.Background(), fyScope(), fyReq("FY2026", 2026))
	require.NoError(t, err)

	// Same range again.
	_, err = svc.Create(context.Background(), fyScope(), fyReq("FY2026-dup", 2026))
	require.ErrorIs(t, err, ErrOverlap)

	// Adjacent year is fine.
	_, err = svc.Create(context.Background(), fyScope(), fyReq("FY2027", 2027))
	require.NoError(t, err)
}

func TestCloseUnknownYear(t *testing.T) {
	svc := NewService(newMemFY(), nil)
	_, err := svc.Close(context.Background(), fyScope(), 42)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
