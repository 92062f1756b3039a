package tests

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"travel/internal/domain"
	"travel/internal/gateway"
	"travel/internal/repository"
	"travel/internal/service"
)

func newPaymentService(repo *MockPaymentRepository, gw *MockGatewayClient, queue *MockNotificationQueue) *service.PaymentService {
	return service.NewPaymentService(repo, gw, queue, "ETB", "http://localhost:8080/api/verify-payment/")
}

func validInitiateRequest() service.InitiatePaymentRequest {
	return service.InitiatePaymentRequest{
		BookingReference: "BK-1",
		Amount:           100,
		Email:            "a@b.com",
		Name:             "A",
	}
}

func TestInitiate_CreatesPendingRecordBeforeGatewayCall(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	gw := NewMockGatewayClient()
	queue := NewMockNotificationQueue()

	// Observe the repository state at the moment the gateway is contacted.
	var recordsAtGatewayCall int32
	var statusAtGatewayCall domain.PaymentStatus
	gw.OnInitialize = func(req gateway.InitializeRequest) {
		recordsAtGatewayCall = int32(repo.CountPayments())
		if p := repo.GetPayment(req.TxRef); p != nil {
			statusAtGatewayCall = p.Status
		}
	}

	svc := newPaymentService(repo, gw, queue)
	result, err := svc.InitiatePayment(context.Background(), validInitiateRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recordsAtGatewayCall != 1 {
		t.Errorf("expected exactly 1 record before gateway call, got %d", recordsAtGatewayCall)
	}
	if statusAtGatewayCall != domain.PaymentStatusPending {
		t.Errorf("expected Pending at gateway call, got %s", statusAtGatewayCall)
	}

	// Record stays Pending after a successful initiation.
	stored := repo.GetPayment(result.TransactionRef)
	if stored == nil {
		t.Fatal("payment record not found")
	}
	if stored.Status != domain.PaymentStatusPending {
		t.Errorf("expected Pending after initiation, got %s", stored.Status)
	}
	if !strings.HasPrefix(result.TransactionRef, "TX-") {
		t.Errorf("expected TX- prefixed transaction ref, got %s", result.TransactionRef)
	}
}

func TestInitiate_CheckoutURLPassedThroughVerbatim(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	gw := NewMockGatewayClient()
	gw.InitializeResult = &gateway.CheckoutResult{CheckoutURL: "https://pay/x"}
	queue := NewMockNotificationQueue()

	svc := newPaymentService(repo, gw, queue)
	result, err := svc.InitiatePayment(context.Background(), validInitiateRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.CheckoutURL != "https://pay/x" {
		t.Errorf("expected checkout URL https://pay/x, got %s", result.CheckoutURL)
	}
}

func TestInitiate_PayerDetailsForwardedToGateway(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	gw := NewMockGatewayClient()
	queue := NewMockNotificationQueue()

	svc := newPaymentService(repo, gw, queue)
	result, err := svc.InitiatePayment(context.Background(), validInitiateRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := gw.LastInitializeRequest()
	if req.Email != "a@b.com" || req.FirstName != "A" {
		t.Errorf("payer details not forwarded: email=%s name=%s", req.Email, req.FirstName)
	}
	if req.Amount != 100 || req.Currency != "ETB" {
		t.Errorf("amount/currency not forwarded: amount=%v currency=%s", req.Amount, req.Currency)
	}
	if req.TxRef != result.TransactionRef {
		t.Errorf("gateway tx_ref %s does not match returned %s", req.TxRef, result.TransactionRef)
	}

	// Payer email is persisted on the record for the confirmation email.
	stored := repo.GetPayment(result.TransactionRef)
	if stored.PayerEmail != "a@b.com" {
		t.Errorf("expected payer email persisted, got %q", stored.PayerEmail)
	}
}

func TestInitiate_DuplicateBookingReference(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	gw := NewMockGatewayClient()
	queue := NewMockNotificationQueue()

	svc := newPaymentService(repo, gw, queue)
	if _, err := svc.InitiatePayment(context.Background(), validInitiateRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.InitiatePayment(context.Background(), validInitiateRequest())
	if !errors.Is(err, repository.ErrDuplicateBooking) {
		t.Fatalf("expected ErrDuplicateBooking, got %v", err)
	}

	if repo.CountPayments() != 1 {
		t.Errorf("expected 1 record after duplicate attempt, got %d", repo.CountPayments())
	}
}

func TestInitiate_MissingFieldsFailFast(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*service.InitiatePaymentRequest)
		want   error
	}{
		{"missing booking reference", func(r *service.InitiatePaymentRequest) { r.BookingReference = "" }, service.ErrInvalidRequest},
		{"missing email", func(r *service.InitiatePaymentRequest) { r.Email = "" }, service.ErrInvalidRequest},
		{"missing name", func(r *service.InitiatePaymentRequest) { r.Name = "  " }, service.ErrInvalidRequest},
		{"missing amount", func(r *service.InitiatePaymentRequest) { r.Amount = 0 }, service.ErrInvalidAmount},
		{"negative amount", func(r *service.InitiatePaymentRequest) { r.Amount = -5 }, service.ErrInvalidAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := NewMockPaymentRepository()
			gw := NewMockGatewayClient()
			queue := NewMockNotificationQueue()
			svc := newPaymentService(repo, gw, queue)

			req := validInitiateRequest()
			tc.mutate(&req)

			_, err := svc.InitiatePayment(context.Background(), req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}

			// No side effects: no record, no gateway contact.
			if repo.CountPayments() != 0 {
				t.Errorf("expected no records, got %d", repo.CountPayments())
			}
			if atomic.LoadInt32(&gw.InitializeCallCount) != 0 {
				t.Errorf("expected no gateway calls, got %d", gw.InitializeCallCount)
			}
		})
	}
}

func TestInitiate_GatewayRejectionMarksRecordFailed(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	gw := NewMockGatewayClient()
	gw.InitializeError = &gateway.RejectionError{Status: "failed", Message: "invalid currency"}
	queue := NewMockNotificationQueue()

	svc := newPaymentService(repo, gw, queue)
	_, err := svc.InitiatePayment(context.Background(), validInitiateRequest())
	if !errors.Is(err, service.ErrPaymentInitiationFailed) {
		t.Fatalf("expected ErrPaymentInitiationFailed, got %v", err)
	}

	stored, getErr := repo.GetByBookingReference(context.Background(), "BK-1")
	if getErr != nil {
		t.Fatalf("unexpected error: %v", getErr)
	}
	if stored.Status != domain.PaymentStatusFailed {
		t.Errorf("expected Failed record after rejection, got %s", stored.Status)
	}
}

func TestInitiate_GatewayTransportErrorMarksRecordFailed(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	gw := NewMockGatewayClient()
	gw.InitializeError = gateway.ErrGatewayUnavailable
	queue := NewMockNotificationQueue()

	svc := newPaymentService(repo, gw, queue)
	_, err := svc.InitiatePayment(context.Background(), validInitiateRequest())
	if !errors.Is(err, service.ErrPaymentInitiationFailed) {
		t.Fatalf("expected ErrPaymentInitiationFailed, got %v", err)
	}

	stored, getErr := repo.GetByBookingReference(context.Background(), "BK-1")
	if getErr != nil {
		t.Fatalf("unexpected error: %v", getErr)
	}
	if stored.Status != domain.PaymentStatusFailed {
		t.Errorf("expected Failed record, got %s", stored.Status)
	}
}

func TestReinitiate_FailedPaymentGetsFreshReference(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	gw := NewMockGatewayClient()
	gw.InitializeError = &gateway.RejectionError{Status: "failed"}
	queue := NewMockNotificationQueue()
	svc := newPaymentService(repo, gw, queue)

	_, err := svc.InitiatePayment(context.Background(), validInitiateRequest())
	if !errors.Is(err, service.ErrPaymentInitiationFailed) {
		t.Fatalf("expected failed initiation, got %v", err)
	}
	failed, _ := repo.GetByBookingReference(context.Background(), "BK-1")

	// Gateway recovers.
	gw.InitializeError = nil

	result, err := svc.ReinitiatePayment(context.Background(), validInitiateRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TransactionRef == failed.TransactionRef {
		t.Error("expected a fresh transaction reference on reinitiate")
	}

	stored := repo.GetPayment(result.TransactionRef)
	if stored == nil {
		t.Fatal("payment record not found under new reference")
	}
	if stored.Status != domain.PaymentStatusPending {
		t.Errorf("expected Pending after reinitiate, got %s", stored.Status)
	}
	if repo.CountPayments() != 1 {
		t.Errorf("expected a single record per booking, got %d", repo.CountPayments())
	}
}

func TestReinitiate_RejectsNonFailedPayments(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.PaymentStatus{domain.PaymentStatusPending, domain.PaymentStatusCompleted} {
		repo := NewMockPaymentRepository()
		repo.AddPayment(&domain.Payment{
			ID:               "pay-1",
			BookingReference: "BK-1",
			TransactionRef:   "TX-old",
			Amount:           100,
			Status:           status,
		})
		gw := NewMockGatewayClient()
		queue := NewMockNotificationQueue()
		svc := newPaymentService(repo, gw, queue)

		_, err := svc.ReinitiatePayment(context.Background(), validInitiateRequest())
		if !errors.Is(err, service.ErrPaymentNotRetryable) {
			t.Errorf("status %s: expected ErrPaymentNotRetryable, got %v", status, err)
		}
		if atomic.LoadInt32(&gw.InitializeCallCount) != 0 {
			t.Errorf("status %s: gateway must not be contacted", status)
		}
	}
}

func TestReinitiate_UnknownBookingReference(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	gw := NewMockGatewayClient()
	queue := NewMockNotificationQueue()
	svc := newPaymentService(repo, gw, queue)

	_, err := svc.ReinitiatePayment(context.Background(), validInitiateRequest())
	if !errors.Is(err, service.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}
