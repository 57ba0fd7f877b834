/*
errors.go - Centralized error types for the ledger

PURPOSE:
  All ledger error types in one place. Conflicts and confirmation
  requirements are NOT errors - they are normal structured outcomes the
  caller must act on (see conflict.go and gate.go). Errors here are the
  cases where the request itself is bad or the world is missing something.

TAXONOMY:
  ErrValidation   - bad input shape (hours, dates); rejected before any write
  ErrUnauthorized - write scoped to a different employee
  ErrNotFound     - referenced log/project/employee absent
  ErrPersistence  - store failure; surfaced as a generic failure, not retried

USAGE:
  if errors.Is(err, ledger.ErrNotFound) { ... }
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when input fails shape/range validation.
	// Nothing is written when this is returned.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when a write targets an entry owned by a
	// different employee.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when a referenced log, project, or employee
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPersistence is returned when the store fails. Retry policy belongs
	// to the caller.
	ErrPersistence = errors.New("persistence failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidHoursError reports an hours value that is not a positive multiple
// of 0.5.
type InvalidHoursError struct {
	Hours decimal.Decimal
}

func (e *InvalidHoursError) Error() string {
	return fmt.Sprintf("invalid hours %s: must be positive and a multiple of 0.5", e.Hours)
}

func (e *InvalidHoursError) Unwrap() error { return ErrValidation }

// NotFoundError reports a missing referenced object.
type NotFoundError struct {
	Kind string // "work log", "vacation log", "project", "employee"
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Ref)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// UnauthorizedError reports a cross-employee write attempt.
type UnauthorizedError struct {
	EmployeeID EmployeeID
	OwnerID    EmployeeID
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("employee %s cannot modify entries owned by %s", e.EmployeeID, e.OwnerID)
}

func (e *UnauthorizedError) Unwrap() error { return ErrUnauthorized }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotFound)
}

// IsNotFound returns true if the error indicates a missing object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
