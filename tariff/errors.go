/*
errors.go - Centralized error types for the tariff engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Adapters (stores, HTTP, CLI) wrap these errors with additional context
  and map them to their own surface (status codes, exit codes).

ERROR CATEGORIES:
  1. Computation errors - InvalidInterval, NoConfiguration (terminal per call)
  2. Validation errors  - Malformed shifts/holidays rejected at write time
  3. Store errors       - Conflicts and missing records

USAGE:
  result, err := tariff.ComputeEarnings(req, shifts, holidays)
  if errors.Is(err, tariff.ErrInvalidInterval) {
      // end not after start without overnight, or malformed time
  }

SEE ALSO:
  - interval.go: Produces IntervalError
  - clock.go: Produces TimeFormatError
  - store.go: Store contracts returning the store errors
*/
package tariff

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInterval is returned when a work interval cannot be normalized:
	// the end is not after the start without the overnight flag, or a time or
	// date input is malformed.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrNoConfiguration is returned when no shifts are configured.
	// A work interval cannot be priced with zero configured rates.
	ErrNoConfiguration = errors.New("no shifts configured")

	// ErrInvalidShift is returned when a shift violates its invariants.
	ErrInvalidShift = errors.New("invalid shift")

	// ErrInvalidHoliday is returned when a holiday violates its invariants.
	ErrInvalidHoliday = errors.New("invalid holiday")

	// ErrDuplicateHoliday is returned when a holiday already exists for the date.
	ErrDuplicateHoliday = errors.New("holiday already exists for date")

	// ErrDuplicateIdempotencyKey is returned when a history record with the
	// same key was already archived. Expected for client retries.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("record not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// IntervalError describes an interval whose end is not after its start
// and which was not marked as overnight.
type IntervalError struct {
	StartTime string
	EndTime   string
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("invalid interval: end %s is not after start %s; mark the interval overnight if it crosses midnight",
		e.EndTime, e.StartTime)
}

func (e *IntervalError) Unwrap() error {
	return ErrInvalidInterval
}

// TimeFormatError describes a time-of-day or date string that could not be parsed.
type TimeFormatError struct {
	Input  string
	Layout string // e.g. "HH:MM", "YYYY-MM-DD"
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("invalid interval: %q is not a valid %s value", e.Input, e.Layout)
}

func (e *TimeFormatError) Unwrap() error {
	return ErrInvalidInterval
}

// ValidationError reports a rejected shift or holiday field.
type ValidationError struct {
	Kind  error  // ErrInvalidShift or ErrInvalidHoliday
	Field string // e.g. "rate", "weekdays"
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s %s", e.Kind, e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrInvalidShift) ||
		errors.Is(err, ErrInvalidHoliday)
}

// IsConflict returns true if the error reports a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateHoliday) ||
		errors.Is(err, ErrDuplicateIdempotencyKey)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
