package rulecraft

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrUnexpectedEnd indicates the stream ended without a terminal event.
	ErrUnexpectedEnd = errors.New("stream ended unexpectedly")
)
