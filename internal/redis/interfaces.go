package redis

import (
	"context"
	"time"
)

// NotificationQueueInterface defines the interface for the notification
// task queue.
type NotificationQueueInterface interface {
	EnqueuePaymentConfirmation(ctx context.Context, paymentID string) error
	Enqueue(ctx context.Context, task NotificationTask) error
	Dequeue(ctx context.Context, timeout time.Duration) (*NotificationTask, error)
}

// Ensure concrete types implement interfaces.
var _ NotificationQueueInterface = (*NotificationQueue)(nil)
