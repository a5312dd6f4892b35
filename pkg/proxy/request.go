package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/tapilab/azure-openai-proxy/pkg/proxy/types"
)

// MaxRequestBodySize is the default body limit (10MB).
const MaxRequestBodySize = 10 * 1024 * 1024

// RequestError represents a request body that cannot be forwarded.
type RequestError struct {
	Response *types.ErrorResponse
	Cause    error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Response.Message, e.Cause)
	}
	return e.Response.Message
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// ToErrorResponse returns the local error body for this failure.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return e.Response
}

// ValidateJSON reads the request body, up to maxBytes, and returns it if it
// is a well-formed JSON document. An empty body is not JSON. A maxBytes of
// zero or less uses MaxRequestBodySize.
func ValidateJSON(r *http.Request, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = MaxRequestBodySize
	}
	if r.Body == nil {
		return nil, &RequestError{Response: types.NewInvalidJSONError(), Cause: errors.New("empty body")}
	}

	// Read one byte past the limit to tell "exactly at limit" from "over".
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &RequestError{Response: types.NewRequestTooLargeError(), Cause: err}
		}
		return nil, &RequestError{Response: types.NewInvalidJSONError(), Cause: fmt.Errorf("failed to read body: %w", err)}
	}
	if int64(len(body)) > maxBytes {
		return nil, &RequestError{
			Response: types.NewRequestTooLargeError(),
			Cause:    fmt.Errorf("body exceeds %d bytes", maxBytes),
		}
	}

	if !json.Valid(body) {
		return nil, &RequestError{Response: types.NewInvalidJSONError(), Cause: errors.New("body is not valid JSON")}
	}
	// json.Valid accepts invalid UTF-8 inside strings; JSON text must be UTF-8.
	if !utf8.Valid(body) {
		return nil, &RequestError{Response: types.NewInvalidJSONError(), Cause: errors.New("body is not valid UTF-8")}
	}

	return body, nil
}
