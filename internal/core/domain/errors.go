package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidModel indicates a model name outside the recognised set.
	ErrInvalidModel = errors.New("invalid model")

	// ErrUnknownTool indicates an invocation of a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// Gateway Errors.

	// ErrUpstream indicates the search gateway could not produce an answer.
	ErrUpstream = errors.New("upstream error")

	// ErrEmptyResponse indicates a successful gateway response without any choices.
	ErrEmptyResponse = errors.New("empty response from upstream")
)

// ValidationError describes a caller-supplied argument that failed validation.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	// Field is the argument name, empty when the whole payload is malformed.
	Field string

	// Reason explains what was expected.
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + " " + e.Reason
}

// Unwrap returns ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// UpstreamError reports a failed exchange with the search gateway: the request
// could not be delivered, or the gateway answered with an error or an unusable body.
// It matches ErrUpstream with errors.Is.
type UpstreamError struct {
	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int

	// Message is the human-readable reason shown to the caller.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// Unwrap returns ErrUpstream and the underlying cause.
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}
