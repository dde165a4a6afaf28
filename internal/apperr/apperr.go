// Package apperr defines the error kinds shared by every layer. Handlers
// translate a kind into an HTTP status with errors.Is / errors.As; lower
// layers wrap with fmt.Errorf("...: %w", err) so the kind survives.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a request whose shape or content is invalid.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized marks a missing, invalid or expired credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks an authenticated caller without the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks an unknown id or slug.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a write that collides with existing state, such as a
	// duplicate slug or a stale version.
	ErrConflict = errors.New("conflict")
	// ErrCapacity marks a registration refused by a capacity or availability rule.
	ErrCapacity = errors.New("capacity")
	// ErrStorage marks a document-store or blob-store failure.
	ErrStorage = errors.New("storage failure")
)

// FieldError is a validation failure attributed to one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *FieldError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a FieldError.
func Invalid(field, format string, args ...any) error {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// CapacityError explains why a registration was refused. Reason is a stable
// machine-readable code.
type CapacityError struct {
	Reason  string
	Message string
}

func (e *CapacityError) Error() string { return e.Message }

func (e *CapacityError) Is(target error) bool { return target == ErrCapacity }

// Storage wraps a backend error so that it classifies as ErrStorage while
// keeping the original error in the chain for logging.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &storageError{op: op, err: err}
}

type storageError struct {
	op  string
	err error
}

func (e *storageError) Error() string { return e.op + ": " + e.err.Error() }

func (e *storageError) Unwrap() error { return e.err }

func (e *storageError) Is(target error) bool { return target == ErrStorage }
