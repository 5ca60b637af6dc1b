/*
errors.go - Centralized error types for the campus ledger

PURPOSE:
  All error types in one place for consistency and discoverability.
  Services return these; the API layer maps them to HTTP status codes.

ERROR CATEGORIES:
  1. Validation     - malformed or missing input, carries field messages
  2. Duplicate      - uniqueness violation (one DTR per employee per day)
  3. Invalid state  - operation not allowed for the entity's current status
  4. Not found      - referenced entity does not exist
  5. Storage        - transaction/commit failure, always rolled back

USAGE:
  if errors.Is(err, domain.ErrDuplicateRecord) { ... }

  var verr *domain.ValidationError
  if errors.As(err, &verr) {
      fmt.Println(verr.Fields["time_in"])
  }

SEE ALSO:
  - store.go: Store contract, which returns DuplicateRecordError
  - api/errors.go: HTTP mapping
*/
package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when input is malformed or incomplete.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateRecord is returned when a uniqueness constraint is violated.
	ErrDuplicateRecord = errors.New("duplicate record")

	// ErrInvalidState is returned when the entity's status forbids the operation.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotFound is returned when a referenced entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrStorage is returned when the store fails to read or commit.
	ErrStorage = errors.New("storage failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError maps field names to human readable messages.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError with a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a field message. The first message for a field wins.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// OrNil returns nil when no field was recorded, so callers can write
// `return v.OrNil()` after accumulating checks.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DuplicateRecordError identifies the entity and key that already exist.
type DuplicateRecordError struct {
	Entity     string
	Key        string
	ExistingID string
}

func (e *DuplicateRecordError) Error() string {
	if e.ExistingID != "" {
		return fmt.Sprintf("%s already exists for %s (id: %s)", e.Entity, e.Key, e.ExistingID)
	}
	return fmt.Sprintf("%s already exists for %s", e.Entity, e.Key)
}

func (e *DuplicateRecordError) Unwrap() error { return ErrDuplicateRecord }

// InvalidStateError reports an operation rejected by the current status.
type InvalidStateError struct {
	Entity string
	ID     string
	State  string
	Op     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s %s in state %q", e.Op, e.Entity, e.ID, e.State)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Entity, e.ID) }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// StorageError wraps a driver failure with the operation that triggered it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// or a request the current state forbids.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicateRecord) ||
		errors.Is(err, ErrInvalidState)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
