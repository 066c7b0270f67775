package webhook

import (
	"errors"
	"fmt"
)

// ErrDelivery is the single failure kind of the webhook: the endpoint could
// not be reached, answered with a non-2xx status, or returned a body that is
// not a JSON object.
var ErrDelivery = errors.New("webhook delivery failed")

// DeliveryError describes one failed round trip.
type DeliveryError struct {
	// StatusCode is the HTTP status, or zero when no response was received.
	StatusCode int
	// Reason is a short human-readable description.
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

func (e *DeliveryError) Error() string {
	msg := ErrDelivery.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeliveryError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDelivery}
	}
	return []error{ErrDelivery, e.Err}
}

func newDeliveryError(status int, reason string, err error) *DeliveryError {
	return &DeliveryError{StatusCode: status, Reason: reason, Err: err}
}
