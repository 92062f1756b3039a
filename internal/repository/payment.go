package repository

import (
	"context"

	"travel/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
// It is the single source of truth for payment status; every status
// mutation passes through TransitionStatus or ResetForRetry.
type PaymentRepository interface {
	// Create persists a new payment record. Returns ErrDuplicateBooking if a
	// record already exists for the booking reference.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by its ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByTransactionRef retrieves a payment by its transaction reference.
	GetByTransactionRef(ctx context.Context, txRef string) (*domain.Payment, error)

	// GetByBookingReference retrieves a payment by its booking reference.
	GetByBookingReference(ctx context.Context, bookingRef string) (*domain.Payment, error)

	// TransitionStatus atomically moves the payment identified by txRef from
	// the `from` status to the `to` status. Returns false when the record was
	// not in `from` anymore, i.e. a concurrent caller won the transition.
	TransitionStatus(ctx context.Context, txRef string, from, to domain.PaymentStatus) (bool, error)

	// ResetForRetry atomically assigns a fresh transaction reference and
	// resets status to Pending, but only while the record is Failed. Returns
	// false when the record was not in Failed state.
	ResetForRetry(ctx context.Context, bookingRef, newTxRef string) (bool, error)
}
