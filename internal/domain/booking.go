package domain

import "time"

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCanceled  BookingStatus = "canceled"
)

// Booking represents a booking of a listing for a date range.
type Booking struct {
	ID        string
	ListingID string
	UserEmail string
	StartDate time.Time
	EndDate   time.Time
	Status    BookingStatus
	CreatedAt time.Time
}
