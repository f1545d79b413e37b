package config

import (
	"errors"
	"fmt"
)

// ErrInvalidValue indicates a setting holds a value outside its range.
var ErrInvalidValue = errors.New("invalid config value")

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Message describes the parse error.
	Message string
	// Err is the underlying decoder error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
