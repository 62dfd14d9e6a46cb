// Package fault defines the error taxonomy shared by the lifecycle services.
// Every error a service returns wraps exactly one of the sentinels below so
// the request boundary can map outcomes to status codes with errors.Is.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation tags input that violates a stated constraint. No write
	// was attempted.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound tags an absent referenced entity. Expected condition, not
	// a failure.
	ErrNotFound = errors.New("not found")

	// ErrPersistence tags an underlying store operation that failed or was
	// rolled back.
	ErrPersistence = errors.New("persistence failed")
)

// Validationf returns a validation fault with a formatted reason.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// NotFoundf returns a not-found fault with a formatted reason.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Persistencef wraps a store error as a persistence fault, preserving the
// cause in the message.
func Persistencef(op string, cause error) error {
	return fmt.Errorf("%s: %v: %w", op, cause, ErrPersistence)
}
