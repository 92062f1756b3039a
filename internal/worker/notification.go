package worker

import (
	"context"
	"errors"
	"log"
	"time"

	internalRedis "travel/internal/redis"
	"travel/internal/repository"
	"travel/internal/service"
)

const dequeueTimeout = 5 * time.Second

// NotificationWorker consumes notification tasks and delivers confirmation
// emails. Delivery is best-effort and at-least-once: a failed send is
// re-queued with an incremented attempt count up to MaxAttempts, and a task
// whose payment no longer exists is dropped.
type NotificationWorker struct {
	queue        internalRedis.NotificationQueueInterface
	paymentRepo  repository.PaymentRepository
	notification *service.NotificationService
	maxAttempts  int
}

// NewNotificationWorker creates a new NotificationWorker.
func NewNotificationWorker(
	queue internalRedis.NotificationQueueInterface,
	paymentRepo repository.PaymentRepository,
	notification *service.NotificationService,
	maxAttempts int,
) *NotificationWorker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &NotificationWorker{
		queue:        queue,
		paymentRepo:  paymentRepo,
		notification: notification,
		maxAttempts:  maxAttempts,
	}
}

// Run consumes tasks until the context is cancelled.
func (w *NotificationWorker) Run(ctx context.Context) {
	log.Println("notification worker started")

	for {
		select {
		case <-ctx.Done():
			log.Println("notification worker stopped")
			return
		default:
		}

		task, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("notification worker stopped")
				return
			}
			log.Printf("notification dequeue error: %v", err)
			time.Sleep(time.Second)
			continue
		}

		if task == nil {
			continue
		}

		w.process(ctx, task)
	}
}

// process handles one task.
func (w *NotificationWorker) process(ctx context.Context, task *internalRedis.NotificationTask) {
	payment, err := w.paymentRepo.GetByID(ctx, task.PaymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// The record may have been removed by an external process;
			// notification is best-effort, so drop the task.
			log.Printf("notification skipped: payment %s not found", task.PaymentID)
			return
		}
		log.Printf("notification lookup error for payment %s: %v", task.PaymentID, err)
		w.requeue(ctx, task)
		return
	}

	if err := w.notification.SendPaymentConfirmation(ctx, payment); err != nil {
		log.Printf("notification send error for payment %s (attempt %d): %v", task.PaymentID, task.Attempt, err)
		w.requeue(ctx, task)
		return
	}
}

// requeue puts a failed task back with an incremented attempt count, giving
// up after maxAttempts.
func (w *NotificationWorker) requeue(ctx context.Context, task *internalRedis.NotificationTask) {
	if task.Attempt >= w.maxAttempts {
		log.Printf("notification dropped for payment %s after %d attempts", task.PaymentID, task.Attempt)
		return
	}

	retry := *task
	retry.Attempt++
	if err := w.queue.Enqueue(ctx, retry); err != nil {
		log.Printf("notification requeue error for payment %s: %v", task.PaymentID, err)
	}
}
