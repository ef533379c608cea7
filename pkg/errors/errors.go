// Package errors provides custom error types for the popdex engine.
// These errors enable programmatic error checking with errors.Is and
// errors.As throughout the resolution pipeline.
package errors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the popdex engine
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrCatalogUnavailable indicates that no catalog snapshot is usable:
	// the fetch failed and no previous good snapshot exists
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrSnapshotExpired indicates the cached snapshot is older than its TTL
	// and must be reloaded before it can be served
	ErrSnapshotExpired = errors.New("snapshot expired")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// FetchError represents a transport failure fetching the raw catalog text.
// It is recoverable: callers may retry or serve a stale snapshot.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog fetch from %s failed (status %d)", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("catalog fetch from %s failed: %v", e.URL, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{URL: url, StatusCode: statusCode, Err: err}
}

// ParseError represents a malformed catalog payload. Parse errors never
// abort a whole load; skipped rows are counted, not raised, so a ParseError
// is only returned when the payload is unusable in its entirety.
type ParseError struct {
	Record  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Record > 0 {
		return fmt.Sprintf("catalog parse error at record %d: %s", e.Record, e.Message)
	}
	return fmt.Sprintf("catalog parse error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(record int, message string, err error) *ParseError {
	return &ParseError{Record: record, Message: message, Err: err}
}

// AdapterError represents a failure from one external lookup adapter.
// A timed-out adapter simply contributes nothing to the resolution pass;
// the overall resolution proceeds with the remaining adapters.
type AdapterError struct {
	Adapter string
	Timeout bool
	Err     error
}

// Error implements the error interface
func (e *AdapterError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("adapter %s timed out", e.Adapter)
	}
	return fmt.Sprintf("adapter %s failed: %v", e.Adapter, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *AdapterError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AdapterError) Is(target error) bool {
	if e.Timeout {
		return target == ErrTimeout
	}
	return false
}

// NewAdapterError creates a new AdapterError. Context deadline errors are
// marked as timeouts so callers can distinguish them from hard failures.
func NewAdapterError(adapter string, err error) *AdapterError {
	return &AdapterError{
		Adapter: adapter,
		Timeout: errors.Is(err, context.DeadlineExceeded),
		Err:     err,
	}
}

// ValidationError represents a record that failed strict schema decoding
// at an adapter boundary
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// StaleSnapshotError reports a snapshot older than the store TTL
type StaleSnapshotError struct {
	LoadedAt time.Time
	TTL      time.Duration
}

// Error implements the error interface
func (e *StaleSnapshotError) Error() string {
	return fmt.Sprintf("catalog snapshot loaded at %s exceeds TTL of %s", e.LoadedAt.Format(time.RFC3339), e.TTL)
}

// Is implements errors.Is support
func (e *StaleSnapshotError) Is(target error) bool {
	return target == ErrSnapshotExpired
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsCatalogUnavailable checks if an error means no usable snapshot exists
func IsCatalogUnavailable(err error) bool {
	return errors.Is(err, ErrCatalogUnavailable)
}

// IsSnapshotExpired checks if an error indicates an expired snapshot
func IsSnapshotExpired(err error) bool {
	return errors.Is(err, ErrSnapshotExpired)
}

// Helper wrapping functions for common patterns

// WrapFetch wraps an error as a FetchError
func WrapFetch(url string, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{URL: url, Err: err}
}

// WrapParse wraps an error as a ParseError
func WrapParse(record int, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Record: record, Message: err.Error(), Err: err}
}

// WrapAdapter wraps an error as an AdapterError
func WrapAdapter(adapter string, err error) error {
	if err == nil {
		return nil
	}
	return NewAdapterError(adapter, err)
}
