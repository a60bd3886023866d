/*
errors.go - Error types for the leave core

PURPOSE:
  All error types in one place. Callers branch with errors.Is/errors.As;
  the HTTP layer maps each category to a status code.

ERROR CATEGORIES:
  1. Not found    - employee, request, grant or holiday missing
  2. Business     - insufficient balance, invalid lifecycle transition
  3. Authorization - actor lacks rights over the target
  4. Validation   - malformed input (dates, types, days)

None of these are retried internally.

SEE ALSO:
  - balance.go:   returns InsufficientBalanceError
  - lifecycle.go: returns InvalidTransitionError
  - api/errors.go: status mapping
*/
package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrNotFound         = errors.New("not found")
	ErrEmployeeNotFound = fmt.Errorf("employee %w", ErrNotFound)
	ErrRequestNotFound  = fmt.Errorf("leave request %w", ErrNotFound)
	ErrGrantNotFound    = fmt.Errorf("paid leave record %w", ErrNotFound)
	ErrHolidayNotFound  = fmt.Errorf("public holiday %w", ErrNotFound)

	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("request changed concurrently, retry")

	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidDateRange = fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	ErrInvalidLeaveType = fmt.Errorf("%w: unknown leave type", ErrInvalidInput)
	ErrInvalidDuration  = fmt.Errorf("%w: unknown duration mode", ErrInvalidInput)
	ErrInvalidDays      = fmt.Errorf("%w: days must be positive with at most one decimal", ErrInvalidInput)
	ErrInvalidGrantType = fmt.Errorf("%w: unknown paid leave type", ErrInvalidInput)

	ErrEmailTaken = errors.New("email already registered")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError reports a balance shortage for one counter.
type InsufficientBalanceError struct {
	Type      LeaveType
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: available %s, requested %s",
		e.Type, e.Available.StringFixed(1), e.Requested.StringFixed(1))
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// InvalidTransitionError names the current state and the refused action.
type InvalidTransitionError struct {
	From      Status
	Attempted Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a leave request that is %s", e.Attempted, e.From)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ForbiddenError explains why an actor was refused.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

func forbidden(reason string) error {
	return &ForbiddenError{Reason: reason}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is due to the caller's input
// or a business rule rather than an infrastructure failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmailTaken) ||
		IsNotFound(err)
}
