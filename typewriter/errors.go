package typewriter

import (
	"errors"
	"fmt"
)

// Errors reported by the engine. Every error returned by an Engine method
// wraps one of these, so callers can test with errors.Is.
var (
	// ErrInvalidArgument is returned for unusable input: text that is not
	// valid UTF-8, an unknown text resource, or a negative duration.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrResourceUnavailable is returned when the keystroke audio cannot be
	// prepared. The reveal still runs, without audio.
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrInvalidState is returned when an operation does not apply to the
	// engine's current state.
	ErrInvalidState = errors.New("invalid state for operation")
)

// Error describes a failed engine operation.
type Error struct {
	Op      string         // Operation that failed, e.g. "SetTypedText"
	Err     error          // One of the sentinel errors above, possibly wrapped
	Context map[string]any // Additional detail for logs
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return "typewriter: " + e.Op + ": unknown error"
	}
	return "typewriter: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithContext adds a key/value pair to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newError(op string, sentinel error, format string, args ...any) *Error {
	err := sentinel
	if format != "" {
		err = fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
	}
	return &Error{Op: op, Err: err}
}
