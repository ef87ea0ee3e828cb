package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse is returned when a response is not exactly 0 or 1.
// The error is recoverable: scheduler and procedure state are untouched.
var ErrInvalidResponse = errors.New("response must be 0 or 1")

// ErrNoConditions is returned when the condition list is empty or missing.
var ErrNoConditions = errors.New("conditions must be a non-empty list")

// ErrUnsupportedStairType is returned when the scheduler is constructed with
// a staircase kind it cannot interleave (currently: simple).
var ErrUnsupportedStairType = errors.New("unsupported staircase type")

// ErrMissingConditionField is returned when a condition lacks a required
// field (startVal, label, or startValSd for QUEST).
var ErrMissingConditionField = errors.New("condition is missing a required field")

// ErrSessionNotFound is returned when a session ID cannot be found.
var ErrSessionNotFound = errors.New("session not found")

// RunError is the structured error shape used across the engine. Every
// validation or runtime failure carries the operation it originated from,
// a human-readable description of the phase, and the specific cause.
type RunError struct {
	// Origin is the operation name, e.g. "MultiStairScheduler.AddResponse".
	Origin string
	// Context describes the phase, e.g. "when validating the conditions".
	Context string
	// Err is the specific cause.
	Err error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Origin, e.Context, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError builds a RunError. The cause may itself be a sentinel so
// callers can branch with errors.Is.
func NewRunError(origin, context string, err error) *RunError {
	return &RunError{Origin: origin, Context: context, Err: err}
}
