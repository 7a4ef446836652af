package database

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNotAvailable is returned when a car has a conflicting booking
	// or availability window for the requested period.
	ErrNotAvailable = errors.New("car not available for the requested period")

	// ErrConcurrentModification is returned when an optimistic-concurrency
	// update finds a stale version.
	ErrConcurrentModification = errors.New("booking was modified concurrently")

	// ErrInvalidTransition is returned when a status change is not legal
	// from the booking's current state.
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrDuplicateReference is returned on unique-constraint violations
	// for booking and payment references.
	ErrDuplicateReference = errors.New("duplicate reference")

	// ErrValidation marks bad input from the caller. Wrap it with context:
	// fmt.Errorf("%w: start must precede end", ErrValidation).
	ErrValidation = errors.New("validation failed")

	// ErrPastDate is returned when a booking targets a date in the past.
	ErrPastDate = errors.New("date is in the past")

	// ErrDateTooFar is returned when a booking starts beyond the allowed
	// advance window.
	ErrDateTooFar = errors.New("date is too far in the future")
)
