// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Document errors.
	ErrExtractionFailed  = errors.New("text extraction failed")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrEmptyDocument     = errors.New("document contains no text")

	// Pattern library errors.
	ErrInvalidPattern = errors.New("invalid pattern")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// ExtractionError records which document a text-extraction failure belongs to.
// It always unwraps to ErrExtractionFailed so callers can test with errors.Is.
type ExtractionError struct {
	Cause  error
	Source string
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrExtractionFailed, e.Source, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrExtractionFailed, e.Source)
}

func (e *ExtractionError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrExtractionFailed}
	}
	return []error{ErrExtractionFailed, e.Cause}
}

// NewExtractionError wraps cause as an extraction failure for source.
func NewExtractionError(source string, cause error) error {
	return &ExtractionError{Source: source, Cause: cause}
}
