package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"travel/internal/domain"
	"travel/internal/repository"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create persists a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, booking_reference, transaction_ref, amount, currency, payer_email, payer_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.BookingReference,
		payment.TransactionRef,
		payment.Amount,
		payment.Currency,
		payment.PayerEmail,
		payment.PayerName,
		payment.Status,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrDuplicateBooking
		}
		return err
	}

	return nil
}

// GetByID retrieves a payment by its ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return r.getByColumn(ctx, "id", id)
}

// GetByTransactionRef retrieves a payment by its transaction reference.
func (r *PaymentRepository) GetByTransactionRef(ctx context.Context, txRef string) (*domain.Payment, error) {
	return r.getByColumn(ctx, "transaction_ref", txRef)
}

// GetByBookingReference retrieves a payment by its booking reference.
func (r *PaymentRepository) GetByBookingReference(ctx context.Context, bookingRef string) (*domain.Payment, error) {
	return r.getByColumn(ctx, "booking_reference", bookingRef)
}

func (r *PaymentRepository) getByColumn(ctx context.Context, column, value string) (*domain.Payment, error) {
	query := `
		SELECT id, booking_reference, transaction_ref, amount, currency, payer_email, payer_name, status, created_at, updated_at
		FROM payments WHERE ` + column + ` = $1
	`

	var payment domain.Payment
	err := r.q.QueryRowContext(ctx, query, value).Scan(
		&payment.ID,
		&payment.BookingReference,
		&payment.TransactionRef,
		&payment.Amount,
		&payment.Currency,
		&payment.PayerEmail,
		&payment.PayerName,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &payment, nil
}

// TransitionStatus atomically moves a payment from one status to another.
// The WHERE clause doubles as the compare of a compare-and-swap: zero rows
// affected means a concurrent caller already moved the record out of `from`.
func (r *PaymentRepository) TransitionStatus(ctx context.Context, txRef string, from, to domain.PaymentStatus) (bool, error) {
	query := `
		UPDATE payments SET status = $1, updated_at = $2
		WHERE transaction_ref = $3 AND status = $4
	`

	result, err := r.q.ExecContext(ctx, query, to, time.Now().UTC(), txRef, from)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

// ResetForRetry assigns a fresh transaction reference and resets status to
// Pending, guarded on the record currently being Failed.
func (r *PaymentRepository) ResetForRetry(ctx context.Context, bookingRef, newTxRef string) (bool, error) {
	query := `
		UPDATE payments SET transaction_ref = $1, status = $2, updated_at = $3
		WHERE booking_reference = $4 AND status = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		newTxRef,
		domain.PaymentStatusPending,
		time.Now().UTC(),
		bookingRef,
		domain.PaymentStatusFailed,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}
