package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy. Typed errors below wrap them so
// callers can match with errors.Is and still recover context with errors.As.
var (
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrFetchFailure      = errors.New("fetch failure")
	ErrWriteFailure      = errors.New("write failure")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidFeed       = errors.New("invalid feed")
	ErrFeedNotFound      = errors.New("feed not found")
)

// ParameterError reports a malformed caller-supplied parameter.
type ParameterError struct {
	Name  string
	Value string
	Err   error
}

func (e *ParameterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s=%q: %v", ErrInvalidParameter, e.Name, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: %s=%q", ErrInvalidParameter, e.Name, e.Value)
}

func (e *ParameterError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidParameter}
	}
	return []error{ErrInvalidParameter, e.Err}
}

// NewParameterError creates a ParameterError.
func NewParameterError(name, value string, err error) *ParameterError {
	return &ParameterError{Name: name, Value: value, Err: err}
}

// FetchError reports a failed call to the source API. URL must already have
// secrets redacted. StatusCode is 0 when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: GET %s", ErrFetchFailure, e.URL)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += fmt.Sprintf(" (body: %q)", e.Body)
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailure}
	}
	return []error{ErrFetchFailure, e.Err}
}

// WriteError reports a failure serializing or writing a feed document.
type WriteError struct {
	Format string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrWriteFailure, e.Format, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrWriteFailure, e.Err}
}

// FormatError reports a requested output format that no formatter serves.
type FormatError struct {
	Format string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedFormat, e.Format)
}

func (e *FormatError) Unwrap() error { return ErrUnsupportedFormat }
