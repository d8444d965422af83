package core

import (
	"errors"
	"fmt"
)

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: element_not_found, login_rejected, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is matches any ExecutionError carrying the same code, so copies produced by
// WithCause/WithMessage/WithDetails still satisfy errors.Is against the
// predefined values.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithMessagef is WithMessage with a format string
func (e *ExecutionError) WithMessagef(format string, args ...interface{}) *ExecutionError {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Config errors
	ErrInvalidConfig     = NewExecutionError(ErrCategoryConfig, "invalid_config", "invalid configuration")
	ErrMissingCredential = NewExecutionError(ErrCategoryConfig, "missing_credential", "login credential is not configured")

	// Auth errors
	ErrNoSession     = NewExecutionError(ErrCategoryAuth, "no_session", "no authenticated session")
	ErrLoginRejected = NewExecutionError(ErrCategoryAuth, "login_rejected", "login rejected")
	ErrLoginTimeout  = NewExecutionError(ErrCategoryAuth, "login_timeout", "login did not reach an authenticated page")

	// Lookup errors
	ErrElementNotFound = NewExecutionError(ErrCategoryNotFound, "element_not_found", "element not found")
	ErrNoMedia         = NewExecutionError(ErrCategoryNotFound, "no_media", "no media file found")

	// Transient UI errors
	ErrConfirmationUnobserved = NewExecutionError(ErrCategoryTransient, "confirmation_unobserved", "action confirmation was not observed")
	ErrInteraction            = NewExecutionError(ErrCategoryTransient, "interaction_failed", "element interaction failed")

	// Storage errors
	ErrStorage = NewExecutionError(ErrCategoryStorage, "storage", "session storage failure")

	// Browser errors
	ErrBrowser = NewExecutionError(ErrCategoryBrowser, "browser", "browser failure")
)

// NewExecutionError creates a new ExecutionError with the given parameters
func NewExecutionError(category ErrorCategory, code, message string) *ExecutionError {
	return &ExecutionError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// CategoryOf returns the category of the first ExecutionError in err's chain.
// Errors without one are reported as browser failures.
func CategoryOf(err error) ErrorCategory {
	if err == nil {
		return ErrCategoryNone
	}
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Category
	}
	return ErrCategoryBrowser
}

// IsCategory reports whether err belongs to category c.
func IsCategory(err error, c ErrorCategory) bool {
	return CategoryOf(err) == c
}
