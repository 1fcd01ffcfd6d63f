package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrValidation       = errors.New("validation error")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// FieldErrors returns the field errors carried by err. Any other error
// becomes a single "input" field error.
func FieldErrors(err error) []FieldError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Errors
	}
	return []FieldError{{Field: "input", Message: err.Error()}}
}

// StoreUnavailableError reports that a store could not serve a request.
// When both stores failed, Store is "all" and Err joins both causes.
type StoreUnavailableError struct {
	Store string
	Err   error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store %s unavailable: %v", e.Store, e.Err)
}

func (e *StoreUnavailableError) Unwrap() []error { return []error{ErrStoreUnavailable, e.Err} }

// Unavailable wraps err as a StoreUnavailableError for the named store.
func Unavailable(store string, err error) error {
	return &StoreUnavailableError{Store: store, Err: err}
}

// PartialSyncError means the authoritative write succeeded but the
// fallback mirror did not. It is logged, never returned to callers.
type PartialSyncError struct {
	Key string
	Err error
}

func (e *PartialSyncError) Error() string {
	return fmt.Sprintf("mirror of %s failed: %v", e.Key, e.Err)
}

func (e *PartialSyncError) Unwrap() error { return e.Err }

// MalformedDataError describes stored data that had to be coerced or dropped
// while decoding.
type MalformedDataError struct {
	Entity string
	Field  string
	Reason string
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("malformed %s.%s: %s", e.Entity, e.Field, e.Reason)
}

// IsSemantic reports whether err is an answer from a reachable store
// (not found, duplicate, invalid input) rather than a transport failure.
func IsSemantic(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrForbidden)
}
