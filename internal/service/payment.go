package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"travel/internal/domain"
	"travel/internal/gateway"
	"travel/internal/repository"
)

// NotificationEnqueuer enqueues a notification task for asynchronous
// delivery. Enqueueing must be cheap; delivery happens elsewhere.
type NotificationEnqueuer interface {
	EnqueuePaymentConfirmation(ctx context.Context, paymentID string) error
}

// PaymentService is the payment lifecycle state machine. It owns every
// status transition: records are created Pending and move exactly once to
// Completed or Failed through the repository's compare-and-swap.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	gateway     gateway.Client
	queue       NotificationEnqueuer

	currency    string
	callbackURL string
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo repository.PaymentRepository, gw gateway.Client, queue NotificationEnqueuer, currency, callbackURL string) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		gateway:     gw,
		queue:       queue,
		currency:    currency,
		callbackURL: callbackURL,
	}
}

// InitiatePaymentRequest contains the parameters for initiating a payment.
type InitiatePaymentRequest struct {
	BookingReference string
	Amount           float64
	Email            string
	Name             string
}

// InitiatePaymentResult is returned to the caller on successful initiation.
type InitiatePaymentResult struct {
	TransactionRef string
	CheckoutURL    string
}

// VerifyPaymentResult is returned from Verify.
type VerifyPaymentResult struct {
	TransactionRef string
	Status         domain.PaymentStatus
}

func (r InitiatePaymentRequest) validate() error {
	if strings.TrimSpace(r.BookingReference) == "" {
		return fmt.Errorf("%w: booking_reference is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// newTransactionRef generates an unpredictable gateway-facing reference.
func newTransactionRef() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "TX-" + hex[:10]
}

// InitiatePayment creates a Pending payment record and initializes the
// transaction with the gateway. The record stays Pending on success; any
// gateway error marks it Failed and a fresh attempt requires
// ReinitiatePayment.
func (s *PaymentService) InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (*InitiatePaymentResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:               uuid.New().String(),
		BookingReference: req.BookingReference,
		TransactionRef:   newTransactionRef(),
		Amount:           req.Amount,
		Currency:         s.currency,
		PayerEmail:       req.Email,
		PayerName:        req.Name,
		Status:           domain.PaymentStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return s.initialize(ctx, payment)
}

// ReinitiatePayment explicitly restarts a payment whose initiation failed.
// Only a record in the Failed state qualifies; the record receives a fresh
// transaction reference and returns to Pending before the gateway is
// contacted again.
func (s *PaymentService) ReinitiatePayment(ctx context.Context, req InitiatePaymentRequest) (*InitiatePaymentResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	existing, err := s.paymentRepo.GetByBookingReference(ctx, req.BookingReference)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if existing.Status != domain.PaymentStatusFailed {
		return nil, ErrPaymentNotRetryable
	}

	txRef := newTransactionRef()
	reset, err := s.paymentRepo.ResetForRetry(ctx, req.BookingReference, txRef)
	if err != nil {
		return nil, err
	}
	if !reset {
		// Lost a race with another retry or a concurrent transition.
		return nil, ErrPaymentNotRetryable
	}

	payment, err := s.paymentRepo.GetByTransactionRef(ctx, txRef)
	if err != nil {
		return nil, err
	}

	return s.initialize(ctx, payment)
}

// initialize performs the gateway round-trip for a Pending record.
func (s *PaymentService) initialize(ctx context.Context, payment *domain.Payment) (*InitiatePaymentResult, error) {
	result, err := s.gateway.Initialize(ctx, gateway.InitializeRequest{
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Email:       payment.PayerEmail,
		FirstName:   payment.PayerName,
		TxRef:       payment.TransactionRef,
		CallbackURL: s.callbackURL,
		Customization: gateway.Customization{
			Title:       "Travel Booking Payment",
			Description: fmt.Sprintf("Payment for booking %s", payment.BookingReference),
		},
	})
	if err != nil {
		if _, txErr := s.paymentRepo.TransitionStatus(ctx, payment.TransactionRef, domain.PaymentStatusPending, domain.PaymentStatusFailed); txErr != nil {
			log.Printf("failed to mark payment %s as failed: %v", payment.TransactionRef, txErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrPaymentInitiationFailed, err)
	}

	return &InitiatePaymentResult{
		TransactionRef: payment.TransactionRef,
		CheckoutURL:    result.CheckoutURL,
	}, nil
}

// VerifyPayment reconciles a payment with the gateway's view of truth.
//
// A record already in a terminal state is returned as-is without contacting
// the gateway, so polling and duplicate callbacks are harmless. For a
// Pending record the gateway outcome drives a single compare-and-swap;
// only the caller that wins the Pending→Completed swap enqueues the
// confirmation notification.
func (s *PaymentService) VerifyPayment(ctx context.Context, txRef string) (*VerifyPaymentResult, error) {
	if strings.TrimSpace(txRef) == "" {
		return nil, fmt.Errorf("%w: tx_ref is required", ErrInvalidRequest)
	}

	payment, err := s.paymentRepo.GetByTransactionRef(ctx, txRef)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.Status.Terminal() {
		return &VerifyPaymentResult{TransactionRef: txRef, Status: payment.Status}, nil
	}

	verification, err := s.gateway.Verify(ctx, txRef)
	if err != nil {
		// Transport errors, malformed responses, and a provider that cannot
		// produce an outcome all leave the record Pending and retryable.
		return nil, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}

	target := domain.PaymentStatusFailed
	if verification.Succeeded {
		target = domain.PaymentStatusCompleted
	}

	won, err := s.paymentRepo.TransitionStatus(ctx, txRef, domain.PaymentStatusPending, target)
	if err != nil {
		return nil, err
	}

	if !won {
		// A concurrent verification already settled the record.
		settled, err := s.paymentRepo.GetByTransactionRef(ctx, txRef)
		if err != nil {
			return nil, err
		}
		return &VerifyPaymentResult{TransactionRef: txRef, Status: settled.Status}, nil
	}

	if target == domain.PaymentStatusCompleted {
		if err := s.queue.EnqueuePaymentConfirmation(ctx, payment.ID); err != nil {
			// Notification delivery is decoupled from payment correctness.
			log.Printf("failed to enqueue confirmation for payment %s: %v", payment.ID, err)
		}
	}

	return &VerifyPaymentResult{TransactionRef: txRef, Status: target}, nil
}
