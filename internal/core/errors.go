package core

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Every failure in the core resolves to
// exactly one of these; the HTTP layer maps them to status codes.
var (
	// ErrNotFound covers both "does not exist" and "exists but belongs to
	// another user". The two cases are deliberately indistinguishable so a
	// non-owner cannot probe for record existence.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the caller identity is missing or invalid.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation is the kind matched by every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrStore is the kind matched by every StoreError.
	ErrStore = errors.New("store failure")
)

// ValidationError rejects malformed or out-of-range input. It is never
// retried and names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError wraps a failure from the record store. The core never retries
// internally; callers may retry the whole operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}
