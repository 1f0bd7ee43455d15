package errors

import (
	"errors"
	"fmt"
)

// Domain error types for business logic

var (
	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// Data-feed errors surfaced by sources and the aggregator

var (
	// ErrSourceUnavailable indicates a single upstream source failed
	// (network error, timeout or non-success response)
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrNoData indicates every source for a feed failed or returned empty
	ErrNoData = errors.New("no data from any source")

	// ErrInsufficientData indicates a dataset too small to compute a
	// meaningful result (e.g. an empty option chain, <200 daily closes)
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMalformedPayload indicates a source responded with a payload
	// that could not be decoded
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrRateLimitExceeded indicates an API rate limit was hit
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Delivery errors

var (
	// ErrDeliveryFailed indicates a notification could not be delivered
	// after all retry attempts
	ErrDeliveryFailed = errors.New("notification delivery failed")
)

// MultiError wraps multiple errors
type MultiError struct {
	Errors []error
}

// Error implements the error interface
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("multiple errors (%d): %v", len(m.Errors), m.Errors[0])
}

// Add adds an error to the list
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// Unwrap exposes the wrapped errors to errors.Is and errors.As
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// HasErrors returns true if there are any errors
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// ToError returns the MultiError as an error, or nil if no errors
func (m *MultiError) ToError() error {
	if !m.HasErrors() {
		return nil
	}
	return m
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
