package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// OTPDeliveryJob sends one-time login codes by email.
type OTPDeliveryJob struct {
	Logger *slog.Logger
}

func NewOTPDeliveryJob(logger *slog.Logger) *OTPDeliveryJob {
	return &OTPDeliveryJob{Logger: logger}
}

// Handle processes TaskTypeDeliverOTP tasks.
func (j *OTPDeliveryJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload DeliverOTPPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with SMTP once the mail relay is provisioned.
	j.logger().Info("delivering one-time code", slog.String("email", payload.Email))
	return nil
}

func (j *OTPDeliveryJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeDeliverOTP))
	}
	return slog.Default().With(slog.String("job", TaskTypeDeliverOTP))
}
