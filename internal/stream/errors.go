package stream

import (
	"errors"
	"fmt"
)

// Errors returned by stream operations.
var (
	// ErrNotAttached indicates no file is attached to the stream.
	ErrNotAttached = errors.New("no stream attached")

	// ErrInvalidPattern indicates a find or substitute pattern does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrRange indicates an address range that cannot apply.
	ErrRange = errors.New("invalid range")
)

// PatternError reports a pattern that failed to compile.
type PatternError struct {
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap returns the compiler error.
func (e *PatternError) Unwrap() error {
	return e.Err
}

// Is matches ErrInvalidPattern.
func (e *PatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}
