package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeDeliverOTP is the task type for one-time code delivery.
	TaskTypeDeliverOTP = "otp:deliver"
	// TaskTypeBillingReconcile is the task type for the paid-amount sweep.
	TaskTypeBillingReconcile = "billing:reconcile"
)

// DeliverOTPPayload carries a one-time login code to the mail worker.
type DeliverOTPPayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// NewDeliverOTPTask constructs an Asynq task for OTP delivery.
func NewDeliverOTPTask(payload DeliverOTPPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDeliverOTP, data), nil
}

// NewBillingReconcileTask constructs the reconcile sweep task. It carries no
// payload; the sweep always covers all companies.
func NewBillingReconcileTask() *asynq.Task {
	return asynq.NewTask(TaskTypeBillingReconcile, nil)
}

// Client submits jobs to the queue. It satisfies auth.OTPDeliverer so the
// auth service can hand off code delivery without knowing about Asynq.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueOTP queues a one-time code for delivery.
func (c *Client) EnqueueOTP(ctx context.Context, email, code string) error {
	task, err := NewDeliverOTPTask(DeliverOTPPayload{Email: email, Code: code})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault), asynq.MaxRetry(3))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
