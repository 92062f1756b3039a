package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrGatewayUnavailable is returned when the provider could not be
	// reached at all: connection failures, timeouts, no response.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrMalformedResponse is returned when the provider responded but the
	// body did not have the expected shape.
	ErrMalformedResponse = errors.New("malformed gateway response")
)

// RejectionError is returned when the provider returned a well-formed
// response that explicitly rejects the request.
type RejectionError struct {
	// Status is the provider's top-level status field.
	Status string
	// Message is the provider's human-readable message, if any.
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway rejected request: %s (status=%s)", e.Message, e.Status)
	}
	return fmt.Sprintf("gateway rejected request (status=%s)", e.Status)
}
