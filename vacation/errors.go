/*
errors.go - Centralized error types for the vacation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers classify with errors.Is against the sentinels, or with the
  Is* helpers below. Transport layers map them to status codes.

ERROR CATEGORIES:
  1. Validation - malformed dates/ranges, unknown types, insufficient balance
  2. Authorization - actor lacks role or department scope
  3. Not found - referenced user/department/request/balance absent
  4. State - illegal lifecycle transition

DISCLOSURE:
  ErrForbidden carries no detail about the target resource. Handlers must
  not add any when rendering it.

SEE ALSO:
  - access.go: Produces ErrForbidden
  - request.go: Produces StateError and InsufficientBalanceError
*/
package vacation

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for input the caller can fix.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden is the generic authorization denial.
	ErrForbidden = errors.New("access denied")

	// ErrNotFound is returned when a referenced entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when the lifecycle forbids the move.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict is returned when a unique key (login, balance year) is taken.
	ErrConflict = errors.New("already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError is a creation-time validation failure for
// annual requests.
type InsufficientBalanceError struct {
	UserID    string
	Year      int
	Available int
	Requested int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient vacation days: available %d, requested %d",
		e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrValidation
}

// StateError reports an action the current status does not allow.
type StateError struct {
	RequestID string
	From      Status
	Action    string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s request %s in status %s", e.Action, e.RequestID, e.From)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidTransition
}

// NotFoundError names the missing entity.
type NotFoundError struct {
	Kind string // "user", "department", "request", "balance"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsForbidden(err error) bool  { return errors.Is(err, ErrForbidden) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsStateError(err error) bool { return errors.Is(err, ErrInvalidTransition) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
