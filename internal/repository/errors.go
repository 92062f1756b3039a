package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateBooking is returned when a payment record already exists
	// for the given booking reference.
	ErrDuplicateBooking = errors.New("payment already exists for booking reference")
)
