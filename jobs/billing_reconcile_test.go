package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/billing/payments"
)

type fakeReconcileStore struct {
	drift     []payments.PaidAmountDrift
	repaired  []int64
	repairErr error
}

func (f *fakeReconcileStore) ListDrift(ctx context.Context) ([]payments.PaidAmountDrift, error) {
	return f.drift, nil
}

func (f *fakeReconcileStore) Repair(ctx context.Context, invoiceID int64) error {
	if f.repairErr != nil {
		return f.repairErr
	}
	f.repaired = append(f.repaired, invoiceID)
	return nil
}

func drift(invoiceID int64, stored, actual string) payments.PaidAmountDrift {
	return payments.PaidAmountDrift{
		InvoiceID: invoiceID,
		Stored:    decimal.RequireFromString(stored),
		Actual:    decimal.RequireFromString(actual),
	}
}

func TestReconcileRepairsEveryDriftedInvoice(t *testing.T) {
	store := &fakeReconcileStore{drift: []payments.PaidAmountDrift{
		drift(11, "50", "75"),
		drift(12, "100", "0"),
	}}
	job := NewBillingReconcileJob(store, slog.Default(), nil)

	require.NoError(t, job.Handle(context.Background(), NewBillingReconcileTask()))
	require.Equal(t, []int64{11, 12}, store.repaired)
}

func TestReconcileNoDriftIsNoop(t *testing.T) {
	store := &fakeReconcileStore{}
	job := NewBillingReconcileJob(store, slog.Default(), nil)

	require.NoError(t, job.Handle(context.Background(), NewBillingReconcileTask()))
	require.Empty(t, store.repaired)
}

func TestReconcileSurfacesRepairFailure(t *testing.T) {
	boom := errors.New("lock timeout")
	store := &fakeReconcileStore{
		drift:     []payments.PaidAmountDrift{drift(11, "50", "75")},
		repairErr: boom,
	}
	job := NewBillingReconcileJob(store, slog.Default(), nil)

	require.ErrorIs(t, job.Handle(context.Background(), NewBillingReconcileTask()), boom)
	require.Empty(t, store.repaired)
}

func TestReconcileUnconfiguredHandler(t *testing.T) {
	job := &BillingReconcileJob{}
	require.Error(t, job.Handle(context.Background(), NewBillingReconcileTask()))
}
