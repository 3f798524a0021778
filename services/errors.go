// services/errors.go
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no owner identity was supplied; reads fall
	// back to defaults, writes fail loudly.
	ErrUnauthenticated = errors.New("no authenticated owner")

	// ErrNotFound is the soft missing-record condition resolved via defaults.
	ErrNotFound = errors.New("record not found")

	// ErrTemplateNotFound means a template type has neither a customized nor
	// a built-in definition.
	ErrTemplateNotFound = errors.New("template not found")
)

// ValidationError marks a reminder that cannot be sent as-is. The batch loop
// counts it and moves on.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DeliveryError is a non-success response from the delivery channel. It
// carries the response body for the log; there is no automatic retry.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed with status %d: %s", e.StatusCode, e.Body)
}
