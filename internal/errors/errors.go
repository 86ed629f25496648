// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrEmptyContext      = errors.New("market context is empty")
	ErrMissingCredential = errors.New("provider credential not configured")
	ErrDeadlineExceeded  = errors.New("completion deadline exceeded")
	ErrEmptyCompletion   = errors.New("completion envelope contains no text")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrJournalDisabled   = errors.New("decision journal is disabled")
)

// UpstreamError represents a failure reported by the completion provider.
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream error [%d]: %s: %v", e.Status, e.Body, e.Err)
	}
	return fmt.Sprintf("upstream error [%d]: %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new UpstreamError.
func NewUpstreamError(status int, body string, err error) *UpstreamError {
	return &UpstreamError{
		Status: status,
		Body:   body,
		Err:    err,
	}
}

// InputError represents an invalid decision request payload.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error: %s: %s", e.Field, e.Message)
}

// NewInputError creates a new InputError.
func NewInputError(field, message string) *InputError {
	return &InputError{
		Field:   field,
		Message: message,
	}
}

// ParseError represents a failure to extract a candidate decision from reply text.
type ParseError struct {
	Dialect string
	Detail  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s]: %s", e.Dialect, e.Detail)
}

// NewParseError creates a new ParseError.
func NewParseError(dialect, detail string) *ParseError {
	return &ParseError{
		Dialect: dialect,
		Detail:  detail,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Classify maps an error to its taxonomy class for logging and metrics.
// The classes are stable label values, not user-facing text.
func Classify(err error) string {
	switch {
	case err == nil:
		return "none"
	case Is(err, ErrUnauthorized):
		return "auth"
	case Is(err, ErrEmptyContext):
		return "input"
	case Is(err, ErrMissingCredential), Is(err, ErrDeadlineExceeded), Is(err, ErrEmptyCompletion):
		return "upstream"
	}
	var inputErr *InputError
	if As(err, &inputErr) {
		return "input"
	}
	var upstreamErr *UpstreamError
	if As(err, &upstreamErr) {
		return "upstream"
	}
	var parseErr *ParseError
	if As(err, &parseErr) {
		return "parse"
	}
	var validationErr *ValidationError
	if As(err, &validationErr) {
		return "validation"
	}
	return "internal"
}
