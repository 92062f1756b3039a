package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"travel/internal/domain"
	"travel/internal/gateway"
	internalRedis "travel/internal/redis"
	"travel/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
// Status transitions are real compare-and-swaps under the mutex, so
// concurrency tests exercise the same winner/loser semantics as the SQL
// implementation.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment // keyed by transaction ref

	// Counters for verification
	CreateCallCount     int32
	TransitionCallCount int32

	// Error injection
	CreateError     error
	GetError        error
	TransitionError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.TransactionRef] = payment
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.BookingReference == payment.BookingReference {
			return repository.ErrDuplicateBooking
		}
	}
	copy := *payment
	m.payments[payment.TransactionRef] = &copy
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.ID == id {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) GetByTransactionRef(ctx context.Context, txRef string) (*domain.Payment, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[txRef]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (m *MockPaymentRepository) GetByBookingReference(ctx context.Context, bookingRef string) (*domain.Payment, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.BookingReference == bookingRef {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) TransitionStatus(ctx context.Context, txRef string, from, to domain.PaymentStatus) (bool, error) {
	atomic.AddInt32(&m.TransitionCallCount, 1)
	if m.TransitionError != nil {
		return false, m.TransitionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[txRef]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *MockPaymentRepository) ResetForRetry(ctx context.Context, bookingRef, newTxRef string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ref, p := range m.payments {
		if p.BookingReference == bookingRef {
			if p.Status != domain.PaymentStatusFailed {
				return false, nil
			}
			delete(m.payments, ref)
			p.TransactionRef = newTxRef
			p.Status = domain.PaymentStatusPending
			p.UpdatedAt = time.Now().UTC()
			m.payments[newTxRef] = p
			return true, nil
		}
	}
	return false, nil
}

// GetPayment returns the stored payment for test assertions.
func (m *MockPaymentRepository) GetPayment(txRef string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[txRef]
}

// CountPayments returns the number of stored payment records.
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// ──────────────────────────────────────────────
// MOCK GATEWAY CLIENT
// ──────────────────────────────────────────────

// MockGatewayClient is a scripted implementation of gateway.Client.
type MockGatewayClient struct {
	// Scripted results
	InitializeResult *gateway.CheckoutResult
	InitializeError  error
	VerifyResult     *gateway.VerificationResult
	VerifyError      error

	// OnInitialize, when set, runs before the scripted result is returned.
	OnInitialize func(req gateway.InitializeRequest)

	// Counters for verification
	InitializeCallCount int32
	VerifyCallCount     int32

	mu           sync.Mutex
	lastInitReq  gateway.InitializeRequest
	lastVerifyTx string
}

// NewMockGatewayClient creates a mock gateway that succeeds by default.
func NewMockGatewayClient() *MockGatewayClient {
	return &MockGatewayClient{
		InitializeResult: &gateway.CheckoutResult{CheckoutURL: "https://checkout.test/session"},
		VerifyResult:     &gateway.VerificationResult{Succeeded: true, RawStatus: "success"},
	}
}

func (m *MockGatewayClient) Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.CheckoutResult, error) {
	atomic.AddInt32(&m.InitializeCallCount, 1)
	m.mu.Lock()
	m.lastInitReq = req
	m.mu.Unlock()
	if m.OnInitialize != nil {
		m.OnInitialize(req)
	}
	if m.InitializeError != nil {
		return nil, m.InitializeError
	}
	return m.InitializeResult, nil
}

func (m *MockGatewayClient) Verify(ctx context.Context, txRef string) (*gateway.VerificationResult, error) {
	atomic.AddInt32(&m.VerifyCallCount, 1)
	m.mu.Lock()
	m.lastVerifyTx = txRef
	m.mu.Unlock()
	if m.VerifyError != nil {
		return nil, m.VerifyError
	}
	return m.VerifyResult, nil
}

// LastInitializeRequest returns the most recent initialize payload.
func (m *MockGatewayClient) LastInitializeRequest() gateway.InitializeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastInitReq
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION QUEUE
// ──────────────────────────────────────────────

// MockNotificationQueue is a channel-backed mock of the notification queue.
type MockNotificationQueue struct {
	tasks chan internalRedis.NotificationTask

	EnqueueCallCount int32
	EnqueueError     error
}

// NewMockNotificationQueue creates a new mock queue.
func NewMockNotificationQueue() *MockNotificationQueue {
	return &MockNotificationQueue{
		tasks: make(chan internalRedis.NotificationTask, 64),
	}
}

func (m *MockNotificationQueue) EnqueuePaymentConfirmation(ctx context.Context, paymentID string) error {
	return m.Enqueue(ctx, internalRedis.NotificationTask{
		PaymentID: paymentID,
		Attempt:   1,
		CreatedAt: time.Now().UTC(),
	})
}

func (m *MockNotificationQueue) Enqueue(ctx context.Context, task internalRedis.NotificationTask) error {
	atomic.AddInt32(&m.EnqueueCallCount, 1)
	if m.EnqueueError != nil {
		return m.EnqueueError
	}
	m.tasks <- task
	return nil
}

func (m *MockNotificationQueue) Dequeue(ctx context.Context, timeout time.Duration) (*internalRedis.NotificationTask, error) {
	select {
	case task := <-m.tasks:
		return &task, nil
	case <-time.After(timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Pending returns the number of tasks waiting in the queue.
func (m *MockNotificationQueue) Pending() int {
	return len(m.tasks)
}

// ──────────────────────────────────────────────
// MOCK MAILER
// ──────────────────────────────────────────────

// SentMail records one delivered email.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MockMailer records sends and optionally fails them.
type MockMailer struct {
	mu   sync.Mutex
	sent []SentMail

	SendError error
	// sendSignal is closed-over by tests waiting for async delivery.
	sendSignal chan struct{}
}

// NewMockMailer creates a new mock mailer.
func NewMockMailer() *MockMailer {
	return &MockMailer{sendSignal: make(chan struct{}, 64)}
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case m.sendSignal <- struct{}{}:
	default:
	}
	if m.SendError != nil {
		return m.SendError
	}
	m.sent = append(m.sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

// Sent returns the recorded deliveries.
func (m *MockMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

// WaitForAttempt blocks until a send attempt happens or the timeout expires.
func (m *MockMailer) WaitForAttempt(timeout time.Duration) bool {
	select {
	case <-m.sendSignal:
		return true
	case <-time.After(timeout):
		return false
	}
}
