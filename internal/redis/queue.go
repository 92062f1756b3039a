package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// NotificationTask is one enqueued notification job.
type NotificationTask struct {
	PaymentID string    `json:"payment_id"`
	Attempt   int       `json:"attempt"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationQueue is a Redis-backed FIFO task queue for notification
// delivery. Producers LPUSH, the worker BRPOPs.
type NotificationQueue struct {
	client *redis.Client
	key    string
}

// NewNotificationQueue creates a new NotificationQueue.
func NewNotificationQueue(client *redis.Client, key string) *NotificationQueue {
	return &NotificationQueue{client: client, key: key}
}

// EnqueuePaymentConfirmation enqueues a confirmation task for the payment.
func (q *NotificationQueue) EnqueuePaymentConfirmation(ctx context.Context, paymentID string) error {
	return q.Enqueue(ctx, NotificationTask{
		PaymentID: paymentID,
		Attempt:   1,
		CreatedAt: time.Now().UTC(),
	})
}

// Enqueue pushes a task onto the queue.
func (q *NotificationQueue) Enqueue(ctx context.Context, task NotificationTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}

	return q.client.LPush(ctx, q.key, data).Err()
}

// Dequeue blocks up to timeout waiting for the next task. Returns nil when
// the wait timed out with nothing to do.
func (q *NotificationQueue) Dequeue(ctx context.Context, timeout time.Duration) (*NotificationTask, error) {
	values, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Nothing queued within the timeout.
		}
		return nil, err
	}

	// BRPop returns [key, value].
	if len(values) != 2 {
		return nil, nil
	}

	var task NotificationTask
	if err := json.Unmarshal([]byte(values[1]), &task); err != nil {
		return nil, err
	}

	return &task, nil
}
