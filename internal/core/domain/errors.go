package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransport indicates the backend could not be reached or answered
	// with a transient failure.
	ErrTransport = errors.New("transport failure")

	// ErrJobFailed indicates a backend job reached the FAILED state.
	ErrJobFailed = errors.New("job failed")

	// ErrIllegalTransition indicates an answer status change the review
	// state machine does not allow.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrManualTextRequired indicates MANUAL_UPDATED was requested without
	// override text.
	ErrManualTextRequired = errors.New("manual text is required for MANUAL_UPDATED")

	// ErrSupersededAnswer indicates a review targeted an answer that is no
	// longer the answer of record for its question.
	ErrSupersededAnswer = errors.New("answer superseded by a newer answer")

	// ErrTrackingCancelled indicates local tracking of a job was cancelled.
	// The job itself may still be running on the backend.
	ErrTrackingCancelled = errors.New("tracking cancelled")

	// ErrTrackerGaveUp indicates the tracker stopped after too many
	// consecutive transient failures.
	ErrTrackerGaveUp = errors.New("tracker gave up after repeated failures")
)

// ErrorKind classifies a normalized client error.
type ErrorKind string

// Error kinds reported by the resource client.
const (
	// ErrorKindTransport is a network or timeout failure. Transient.
	ErrorKindTransport ErrorKind = "transport"

	// ErrorKindServer is a 5xx response. Transient for reads.
	ErrorKindServer ErrorKind = "server"

	// ErrorKindValidation is a rejected input. Never retried.
	ErrorKindValidation ErrorKind = "validation"

	// ErrorKindNotFound is an unknown identity. Terminal for that identity.
	ErrorKindNotFound ErrorKind = "not_found"

	// ErrorKindJobFailed is a job that ended FAILED. Terminal for that job.
	ErrorKindJobFailed ErrorKind = "job_failed"
)

// Transient reports whether an error of this kind may succeed on retry.
func (k ErrorKind) Transient() bool {
	return k == ErrorKindTransport || k == ErrorKindServer
}

// Error is the single error shape every resource client failure is
// normalized into. Message is human readable; Cause keeps the underlying
// error for diagnostics.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Message is the user-facing description.
	Message string

	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int

	// Cause is the underlying error, if any.
	Cause error
}

// NewError creates a normalized error.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel that corresponds to the error kind, so callers
// can write errors.Is(err, domain.ErrNotFound).
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == ErrorKindNotFound
	case ErrInvalidInput:
		return e.Kind == ErrorKindValidation
	case ErrTransport:
		return e.Kind.Transient()
	case ErrJobFailed:
		return e.Kind == ErrorKindJobFailed
	}
	return false
}

// Detail formats the error with its cause for verbose output.
func (e *Error) Detail() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s (%s)", e.Error(), e.Kind)
	}
	return fmt.Sprintf("%s (%s): %v", e.Error(), e.Kind, e.Cause)
}

// KindOf returns the kind of a normalized error anywhere in the chain.
// Errors that were never normalized report ErrorKindTransport.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrorKindNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrIllegalTransition),
		errors.Is(err, ErrManualTextRequired), errors.Is(err, ErrSupersededAnswer):
		return ErrorKindValidation
	case errors.Is(err, ErrJobFailed):
		return ErrorKindJobFailed
	}
	return ErrorKindTransport
}

// IsTransient reports whether err may succeed if the call is repeated.
func IsTransient(err error) bool {
	return err != nil && KindOf(err).Transient()
}

// Invalid builds a validation error wrapping ErrInvalidInput.
func Invalid(format string, args ...any) error {
	return &Error{
		Kind:    ErrorKindValidation,
		Message: fmt.Sprintf(format, args...),
		Cause:   ErrInvalidInput,
	}
}
