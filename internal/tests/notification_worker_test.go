package tests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"travel/internal/domain"
	"travel/internal/service"
	"travel/internal/worker"
)

func completedPayment() *domain.Payment {
	return &domain.Payment{
		ID:               "pay-1",
		BookingReference: "BK-1",
		TransactionRef:   "TX-abc123",
		Amount:           100,
		Currency:         "ETB",
		PayerEmail:       "a@b.com",
		PayerName:        "A",
		Status:           domain.PaymentStatusCompleted,
	}
}

func TestWorker_DeliversConfirmationToPayerEmail(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(completedPayment())
	queue := NewMockNotificationQueue()
	mailer := NewMockMailer()
	notification := service.NewNotificationService(mailer, "no-reply@travelapp.com")

	w := worker.NewNotificationWorker(queue, repo, notification, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := queue.EnqueuePaymentConfirmation(context.Background(), "pay-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !mailer.WaitForAttempt(2 * time.Second) {
		t.Fatal("timed out waiting for delivery")
	}

	sent := mailer.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sent))
	}
	if sent[0].To != "a@b.com" {
		t.Errorf("expected delivery to payer email, got %s", sent[0].To)
	}
	if sent[0].Subject != "Payment Confirmation" {
		t.Errorf("unexpected subject %q", sent[0].Subject)
	}
	if !strings.Contains(sent[0].Body, "BK-1") || !strings.Contains(sent[0].Body, "TX-abc123") {
		t.Errorf("email body missing booking or transaction reference:\n%s", sent[0].Body)
	}
}

func TestWorker_MissingPaymentIsDropped(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	queue := NewMockNotificationQueue()
	mailer := NewMockMailer()
	notification := service.NewNotificationService(mailer, "no-reply@travelapp.com")

	w := worker.NewNotificationWorker(queue, repo, notification, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := queue.EnqueuePaymentConfirmation(context.Background(), "pay-missing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Give the worker time to process and drop the task.
	time.Sleep(300 * time.Millisecond)

	if len(mailer.Sent()) != 0 {
		t.Errorf("expected no deliveries for missing payment, got %d", len(mailer.Sent()))
	}
	if queue.Pending() != 0 {
		t.Errorf("expected task dropped, %d still queued", queue.Pending())
	}
}

func TestWorker_SendFailureRetriesUpToMaxAttempts(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(completedPayment())
	queue := NewMockNotificationQueue()
	mailer := NewMockMailer()
	mailer.SendError = errors.New("smtp unavailable")
	notification := service.NewNotificationService(mailer, "no-reply@travelapp.com")

	const maxAttempts = 3
	w := worker.NewNotificationWorker(queue, repo, notification, maxAttempts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := queue.EnqueuePaymentConfirmation(context.Background(), "pay-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every attempt fails; the task should be retried then dropped.
	for i := 0; i < maxAttempts; i++ {
		if !mailer.WaitForAttempt(2 * time.Second) {
			t.Fatalf("timed out waiting for attempt %d", i+1)
		}
	}

	// No further attempts after the task is dropped.
	if mailer.WaitForAttempt(300 * time.Millisecond) {
		t.Error("expected no attempts beyond max")
	}
	if queue.Pending() != 0 {
		t.Errorf("expected empty queue after giving up, %d queued", queue.Pending())
	}

	// Payment status is untouched by delivery failures.
	if stored := repo.GetPayment("TX-abc123"); stored.Status != domain.PaymentStatusCompleted {
		t.Errorf("payment status changed by notification failure: %s", stored.Status)
	}
}
