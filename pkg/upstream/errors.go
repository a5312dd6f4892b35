package upstream

import (
	"fmt"
	"time"
)

// TransportError means the upstream produced no response: DNS failure,
// refused connection, reset, TLS failure or caller cancellation.
type TransportError struct {
	// Route is the route being forwarded.
	Route string

	// URL is the upstream URL, without credentials.
	URL string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream %s: request to %s failed: %v", e.Route, e.URL, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// TimeoutError means the upstream did not answer within the timeout.
type TimeoutError struct {
	// Route is the route being forwarded.
	Route string

	// Timeout is the configured timeout duration.
	Timeout time.Duration

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream %s: no response within %s", e.Route, e.Timeout)
}

// Unwrap returns the underlying error for error chain support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// ResponseTooLargeError means the upstream body exceeded the read limit.
type ResponseTooLargeError struct {
	Route string
	Limit int64
}

// Error implements the error interface.
func (e *ResponseTooLargeError) Error() string {
	return fmt.Sprintf("upstream %s: response body exceeds %d bytes", e.Route, e.Limit)
}
