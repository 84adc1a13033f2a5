// Package errors provides error handling utilities.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeRuleSourceUnavailable indicates a rule table could not be read.
	// Loaders recover from it with built-in defaults.
	TypeRuleSourceUnavailable Type = "RULE_SOURCE_UNAVAILABLE"

	// TypeRuleDataMalformed indicates a rule table exists but cannot be decoded
	TypeRuleDataMalformed Type = "RULE_DATA_MALFORMED"

	// TypeProviderFailure indicates a cost provider failed for one element
	TypeProviderFailure Type = "PROVIDER_FAILURE"

	// TypeCalculation indicates the whole calculation failed
	TypeCalculation Type = "CALCULATION_FAILURE"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"

	// TypeNotFound indicates a resource not found error
	TypeNotFound Type = "NOT_FOUND"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType reports whether any error in err's chain is an *Error of type t
func IsType(err error, t Type) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Type == t {
			return true
		}
		err = e.Cause
	}
	return false
}

// TypeOf returns the type of the outermost *Error in err's chain
func TypeOf(err error) (Type, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type, true
	}
	return "", false
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}

// RuleSourceUnavailable creates an error for an unreadable rule table
func RuleSourceUnavailable(table string, cause error) *Error {
	return Wrapf(TypeRuleSourceUnavailable, cause, "rule table %s unavailable", table).
		WithContext("table", table)
}

// RuleDataMalformed creates an error for a rule table that failed to decode
func RuleDataMalformed(table string, cause error) *Error {
	return Wrapf(TypeRuleDataMalformed, cause, "rule table %s is malformed", table).
		WithContext("table", table)
}

// ProviderFailure creates an error for a provider that failed on one element
func ProviderFailure(provider, elementID string, cause error) *Error {
	return Wrapf(TypeProviderFailure, cause, "provider %s failed for element %s", provider, elementID).
		WithContext("provider", provider).
		WithContext("element_id", elementID)
}

// Calculation creates a whole-batch calculation error
func Calculation(message string, cause error) *Error {
	return Wrap(TypeCalculation, message, cause)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
