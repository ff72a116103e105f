package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned by calls made while the session is down.
	ErrNotConnected = errors.New("backend session not connected")

	// ErrUnauthorized is returned when the backend rejects the session.
	ErrUnauthorized = errors.New("backend session unauthorized")

	// ErrShortRead is returned when the backend ends a file before the
	// requested window was delivered.
	ErrShortRead = errors.New("backend returned fewer bytes than requested")
)

// Error is a failed backend call.
type Error struct {
	// Op is the capability that failed, e.g. "connect" or "read_part".
	Op string

	// StatusCode is the transport status code (0 if not applicable).
	StatusCode int

	// Message is the error message reported by the backend.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.StatusCode > 0 && e.Cause != nil:
		return fmt.Sprintf("backend %s failed (status %d): %s: %v", e.Op, e.StatusCode, e.Message, e.Cause)
	case e.StatusCode > 0:
		return fmt.Sprintf("backend %s failed (status %d): %s", e.Op, e.StatusCode, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("backend %s failed: %v", e.Op, e.Cause)
	default:
		return fmt.Sprintf("backend %s failed: %s", e.Op, e.Message)
	}
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}
