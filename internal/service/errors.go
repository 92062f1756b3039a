package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when a required field is missing or
	// malformed. No record is created and the gateway is never contacted.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidAmount is returned when the amount is not a positive number.
	// It is an ErrInvalidRequest for errors.Is purposes.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be a positive number", ErrInvalidRequest)

	// ErrPaymentNotFound is returned when no payment exists for the given
	// transaction or booking reference.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentInitiationFailed is returned when the gateway rejected or
	// could not accept the initialization; the record is marked Failed.
	ErrPaymentInitiationFailed = errors.New("failed to initiate payment")

	// ErrVerificationUnavailable is returned when the gateway could not
	// produce a verification outcome. The record stays Pending and the call
	// can be retried.
	ErrVerificationUnavailable = errors.New("unable to verify payment")

	// ErrPaymentNotRetryable is returned when Reinitiate is called for a
	// payment that is not in the Failed state.
	ErrPaymentNotRetryable = errors.New("payment is not in a retryable state")
)
