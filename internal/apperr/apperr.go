// Package apperr defines the sentinel errors the service layer reports
// and the HTTP layer maps onto status codes.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing resources and resources owned by
	// another subscriber, which are indistinguishable to the caller.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks rejected input.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized marks requests lacking an authenticated principal.
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden marks authenticated requests without permission.
	ErrForbidden = errors.New("permission denied")

	// ErrConflict marks requests that contradict current state, such as
	// an illegal order status transition.
	ErrConflict = errors.New("conflict")
)

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// Conflictf wraps ErrConflict with a formatted message.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}
