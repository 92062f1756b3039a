package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"travel/internal/domain"
	"travel/internal/gateway"
	"travel/internal/service"
)

func pendingPayment() *domain.Payment {
	return &domain.Payment{
		ID:               "pay-1",
		BookingReference: "BK-1",
		TransactionRef:   "TX-abc123",
		Amount:           100,
		Currency:         "ETB",
		PayerEmail:       "a@b.com",
		PayerName:        "A",
		Status:           domain.PaymentStatusPending,
	}
}

func TestVerify_SuccessTransitionsToCompletedAndEnqueuesNotification(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(pendingPayment())
	gw := NewMockGatewayClient()
	queue := NewMockNotificationQueue()
	svc := newPaymentService(repo, gw, queue)

	result, err := svc.VerifyPayment(context.Background(), "TX-abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != domain.PaymentStatusCompleted {
		t.Errorf("expected Completed, got %s", result.Status)
	}
	if stored := repo.GetPayment("TX-abc123"); stored.Status != domain.PaymentStatusCompleted {
		t.Errorf("expected stored record Completed, got %s", stored.Status)
	}
	if atomic.LoadInt32(&queue.EnqueueCallCount) != 1 {
		t.Errorf("expected 1 enqueued notification, got %d", queue.EnqueueCallCount)
	}
}

func TestVerify_TerminalRecordShortCircuitsWithoutGatewayCall(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(pendingPayment())
	gw := NewMockGatewayClient()
	queue := NewMockNotificationQueue()
	svc := newPaymentService(repo, gw, queue)

	first, err := svc.VerifyPayment(context.Background(), "TX-abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.VerifyPayment(context.Background(), "TX-abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Status != second.Status {
		t.Errorf("verify not idempotent: %s vs %s", first.Status, second.Status)
	}
	if got := atomic.LoadInt32(&gw.VerifyCallCount); got != 1 {
		t.Errorf("expected exactly 1 gateway verify call, got %d", got)
	}
	if got := atomic.LoadInt32(&queue.EnqueueCallCount); got != 1 {
		t.Errorf("expected at most one notification, got %d", got)
	}
}

func TestVerify_ConcurrentCallsProduceOneWinnerAndOneNotification(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(pendingPayment())
	gw := NewMockGatewayClient()
	queue := NewMockNotificationQueue()
	svc := newPaymentService(repo, gw, queue)

	const callers = 16
	var wg sync.WaitGroup
	results := make([]domain.PaymentStatus, callers)
	errs := make([]error, callers)

	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			result, err := svc.VerifyPayment(context.Background(), "TX-abc123")
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = result.Status
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, err)
		}
	}
	for i, status := range results {
		if status != domain.PaymentStatusCompleted {
			t.Errorf("caller %d: expected Completed, got %s", i, status)
		}
	}

	// Exactly one transition winner, so exactly one notification.
	if got := atomic.LoadInt32(&queue.EnqueueCallCount); got != 1 {
		t.Errorf("expected exactly 1 notification, got %d", got)
	}
	if stored := repo.GetPayment("TX-abc123"); stored.Status != domain.PaymentStatusCompleted {
		t.Errorf("expected Completed, got %s", stored.Status)
	}
}

func TestVerify_TransportErrorLeavesRecordPending(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(pendingPayment())
	gw := NewMockGatewayClient()
	gw.VerifyError = gateway.ErrGatewayUnavailable
	queue := NewMockNotificationQueue()
	svc := newPaymentService(repo, gw, queue)

	_, err := svc.VerifyPayment(context.Background(), "TX-abc123")
	if !errors.Is(err, service.ErrVerificationUnavailable) {
		t.Fatalf("expected ErrVerificationUnavailable, got %v", err)
	}

	// Still Pending: the caller may retry.
	if stored := repo.GetPayment("TX-abc123"); stored.Status != domain.PaymentStatusPending {
		t.Errorf("expected Pending after transport error, got %s", stored.Status)
	}

	// A later retry succeeds.
	gw.VerifyError = nil
	result, err := svc.VerifyPayment(context.Background(), "TX-abc123")
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if result.Status != domain.PaymentStatusCompleted {
		t.Errorf("expected Completed on retry, got %s", result.Status)
	}
}

func TestVerify_MalformedResponseLeavesRecordPending(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(pendingPayment())
	gw := NewMockGatewayClient()
	gw.VerifyError = gateway.ErrMalformedResponse
	queue := NewMockNotificationQueue()
	svc := newPaymentService(repo, gw, queue)

	_, err := svc.VerifyPayment(context.Background(), "TX-abc123")
	if !errors.Is(err, service.ErrVerificationUnavailable) {
		t.Fatalf("expected ErrVerificationUnavailable, got %v", err)
	}
	if stored := repo.GetPayment("TX-abc123"); stored.Status != domain.PaymentStatusPending {
		t.Errorf("expected Pending, got %s", stored.Status)
	}
}

func TestVerify_GatewayReportedFailureTransitionsToFailed(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(pendingPayment())
	gw := NewMockGatewayClient()
	gw.VerifyResult = &gateway.VerificationResult{Succeeded: false, RawStatus: "failed"}
	queue := NewMockNotificationQueue()
	svc := newPaymentService(repo, gw, queue)

	result, err := svc.VerifyPayment(context.Background(), "TX-abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != domain.PaymentStatusFailed {
		t.Errorf("expected Failed, got %s", result.Status)
	}
	if got := atomic.LoadInt32(&queue.EnqueueCallCount); got != 0 {
		t.Errorf("expected no notification for failed payment, got %d", got)
	}

	// Terminal: a later verify returns Failed without another gateway call.
	again, err := svc.VerifyPayment(context.Background(), "TX-abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Status != domain.PaymentStatusFailed {
		t.Errorf("expected Failed, got %s", again.Status)
	}
	if got := atomic.LoadInt32(&gw.VerifyCallCount); got != 1 {
		t.Errorf("expected 1 gateway call, got %d", got)
	}
}

func TestVerify_UnknownTransactionReference(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	gw := NewMockGatewayClient()
	queue := NewMockNotificationQueue()
	svc := newPaymentService(repo, gw, queue)

	_, err := svc.VerifyPayment(context.Background(), "TX-missing")
	if !errors.Is(err, service.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
	if got := atomic.LoadInt32(&gw.VerifyCallCount); got != 0 {
		t.Errorf("expected no gateway calls, got %d", got)
	}
}

func TestVerify_EmptyReferenceIsInvalid(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	gw := NewMockGatewayClient()
	queue := NewMockNotificationQueue()
	svc := newPaymentService(repo, gw, queue)

	_, err := svc.VerifyPayment(context.Background(), "  ")
	if !errors.Is(err, service.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
