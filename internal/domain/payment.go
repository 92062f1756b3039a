package domain

import "time"

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

// Terminal reports whether the status permits no further transition.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// Payment represents one payment attempt for a booking.
//
// TransactionRef is the gateway-facing identifier generated locally at
// initiation time; it is distinct from BookingReference and is the lookup
// key for verification.
type Payment struct {
	ID               string
	BookingReference string
	TransactionRef   string
	Amount           float64
	Currency         string
	PayerEmail       string
	PayerName        string
	Status           PaymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
