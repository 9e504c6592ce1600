package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-erp/meridian/internal/billing/payments"
	"github.com/meridian-erp/meridian/internal/observability"
)

// BillingReconcileJob sweeps invoices whose stored paid_amount disagrees with
// the sum of their active payments and repairs them. Drift should never
// happen through the API paths; the sweep catches manual data edits and
// crashed transactions.
type BillingReconcileJob struct {
	Store   payments.ReconcileStore
	Logger  *slog.Logger
	Metrics *observability.Metrics
	clock   func() time.Time
}

func NewBillingReconcileJob(store payments.ReconcileStore, logger *slog.Logger, metrics *observability.Metrics) *BillingReconcileJob {
	return &BillingReconcileJob{
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// Handle executes the sweep.
func (j *BillingReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("billing reconcile: handler not configured")
	}
	start := j.now()
	logger := j.logger()
	logger.Info("starting reconcile sweep")

	drifted, err := j.Store.ListDrift(ctx)
	if err != nil {
		logger.Error("sweep failed", slog.Any("error", err))
		return err
	}

	for _, d := range drifted {
		if err := j.Store.Repair(ctx, d.InvoiceID); err != nil {
			logger.Error("repair failed", slog.Int64("invoice_id", d.InvoiceID), slog.Any("error", err))
			return err
		}
		logger.Warn("paid amount drift repaired",
			slog.Int64("invoice_id", d.InvoiceID),
			slog.String("stored", d.Stored.StringFixed(2)),
			slog.String("actual", d.Actual.StringFixed(2)),
		)
		if j.Metrics != nil {
			j.Metrics.ReconcileDriftInc()
		}
	}

	logger.Info("completed reconcile sweep",
		slog.Int("drifted", len(drifted)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *BillingReconcileJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeBillingReconcile))
	}
	return slog.Default().With(slog.String("job", TaskTypeBillingReconcile))
}

func (j *BillingReconcileJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
