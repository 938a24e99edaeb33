package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every domain error wraps exactly one of them, anything
// else reaching the outer layers is an infrastructure failure.
var (
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrNotFound     = errors.New("not found")
)

// Conflict-class errors: the caller may try again.
var (
	ErrSlotFullyBooked      = fmt.Errorf("%w: slot is fully booked", ErrConflict)
	ErrAlreadyBooked        = fmt.Errorf("%w: customer already has an active appointment for this day", ErrConflict)
	ErrConcurrencyExhausted = fmt.Errorf("%w: optimistic concurrency retries exhausted", ErrConflict)
)

// Invalid-state-class errors: the request can never succeed against the current state.
var (
	ErrIllegalState           = fmt.Errorf("%w: illegal state", ErrInvalidState)
	ErrValidation             = fmt.Errorf("%w: validation failed", ErrInvalidState)
	ErrRescheduleLimitReached = fmt.Errorf("%w: reschedule limit reached", ErrIllegalState)
	ErrOutsideGraceWindow     = fmt.Errorf("%w: outside check-in grace window", ErrValidation)
	ErrVersionMismatch        = fmt.Errorf("%w: expected version mismatch", ErrIllegalState)
)

// Not-found-class errors.
var (
	ErrSlotNotFound        = fmt.Errorf("%w: slot", ErrNotFound)
	ErrAppointmentNotFound = fmt.Errorf("%w: appointment", ErrNotFound)
	ErrBranchNotFound      = fmt.Errorf("%w: branch", ErrNotFound)
)

// ErrNotConfigured marks missing branch schedule data (operating hours or
// capacity). Slot generation skips such days instead of failing.
var ErrNotConfigured = errors.New("not configured")

// ErrVersionConflict signals a lost conditional write. It is retried by the
// optimistic retry loop and never reaches callers as is.
var ErrVersionConflict = errors.New("version conflict")

// ErrorClass is the coarse category used by outer layers to pick a response.
type ErrorClass string

const (
	ClassNone           ErrorClass = ""
	ClassConflict       ErrorClass = "conflict"
	ClassInvalidState   ErrorClass = "invalid_state"
	ClassNotFound       ErrorClass = "not_found"
	ClassInfrastructure ErrorClass = "infrastructure"
)

// Classify maps an error to its class.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrConflict):
		return ClassConflict
	case errors.Is(err, ErrInvalidState):
		return ClassInvalidState
	case errors.Is(err, ErrNotFound):
		return ClassNotFound
	default:
		return ClassInfrastructure
	}
}

// IsDomainError reports whether err is a terminal business outcome rather
// than a race or an infrastructure failure.
func IsDomainError(err error) bool {
	c := Classify(err)
	return c == ClassConflict || c == ClassInvalidState || c == ClassNotFound
}

// Outcome is the metrics label for err: "ok" or its class.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(Classify(err))
}
