package errors

import (
	"errors"
	"fmt"
)

// Domain error types for business logic

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// Feed-specific errors

var (
	// ErrFeedUnavailable indicates the upstream social API is unavailable
	ErrFeedUnavailable = errors.New("feed source unavailable")

	// ErrProfileNotFound indicates an account identifier could not be resolved
	ErrProfileNotFound = errors.New("profile not found")

	// ErrFeedRateLimited indicates the upstream social API throttled us
	ErrFeedRateLimited = errors.New("feed source rate limited")

	// ErrUnknownPlatform indicates no feed source is registered for a platform
	ErrUnknownPlatform = errors.New("unknown platform")
)

// Streaming errors

var (
	// ErrStreamClosed indicates the tick stream has already terminated
	ErrStreamClosed = errors.New("stream closed")

	// ErrStreamCapReached indicates the connection hit its wall-clock cap
	ErrStreamCapReached = errors.New("stream wall-clock cap reached")
)

// Summarization errors

var (
	// ErrRateLimitExceeded indicates the summarize path budget is exhausted
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrSummarizerUnavailable indicates the LLM provider call failed
	ErrSummarizerUnavailable = errors.New("summarizer unavailable")
)

// DomainError wraps an error with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
