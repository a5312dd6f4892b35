package types

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is a locally generated error.
type ErrorResponse struct {
	// StatusCode is the HTTP status to send.
	StatusCode int

	// Message is the text placed in the "error" field.
	Message string

	// Type categorizes the error for logs and metrics. It is not sent.
	Type string
}

// Error type constants.
const (
	ErrorTypeInvalidRequest     = "invalid_request_error"
	ErrorTypeRequestTooLarge    = "request_too_large"
	ErrorTypeMethodNotAllowed   = "method_not_allowed"
	ErrorTypeUnauthorized       = "unauthorized"
	ErrorTypeAuthentication     = "authentication_error"
	ErrorTypeServerError        = "server_error"
	ErrorTypeBadGateway         = "bad_gateway"
	ErrorTypeServiceUnavailable = "service_unavailable"
	ErrorTypeGatewayTimeout     = "gateway_timeout"
)

// Messages for the fixed local errors.
const (
	MessageInvalidJSON      = "Invalid JSON"
	MessageBodyTooLarge     = "Request body too large"
	MessageMethodNotAllowed = "Method not allowed"
	MessageUnauthorized     = "Unauthorized"
)

// NewErrorResponse creates a new ErrorResponse.
func NewErrorResponse(statusCode int, message, errorType string) *ErrorResponse {
	return &ErrorResponse{StatusCode: statusCode, Message: message, Type: errorType}
}

// NewInvalidJSONError is returned when the request body is not JSON.
func NewInvalidJSONError() *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, MessageInvalidJSON, ErrorTypeInvalidRequest)
}

// NewRequestTooLargeError is returned when the body exceeds the limit.
func NewRequestTooLargeError() *ErrorResponse {
	return NewErrorResponse(http.StatusRequestEntityTooLarge, MessageBodyTooLarge, ErrorTypeRequestTooLarge)
}

// NewMethodNotAllowedError is returned for non-POST requests on proxy routes.
func NewMethodNotAllowedError() *ErrorResponse {
	return NewErrorResponse(http.StatusMethodNotAllowed, MessageMethodNotAllowed, ErrorTypeMethodNotAllowed)
}

// NewUnauthorizedError is returned when a function key is missing or wrong.
func NewUnauthorizedError() *ErrorResponse {
	return NewErrorResponse(http.StatusUnauthorized, MessageUnauthorized, ErrorTypeUnauthorized)
}

// NewAuthenticationError is returned when no upstream token could be obtained.
func NewAuthenticationError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusInternalServerError, message, ErrorTypeAuthentication)
}

// NewServerError creates an internal server error (500).
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusInternalServerError, message, ErrorTypeServerError)
}

// NewBadGatewayError creates a bad gateway error (502).
func NewBadGatewayError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadGateway, message, ErrorTypeBadGateway)
}

// NewServiceUnavailableError creates a service unavailable error (503).
func NewServiceUnavailableError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusServiceUnavailable, message, ErrorTypeServiceUnavailable)
}

// NewGatewayTimeoutError creates a gateway timeout error (504).
func NewGatewayTimeoutError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusGatewayTimeout, message, ErrorTypeGatewayTimeout)
}

// Body renders the response body as {"error": "<message>"}, with the space
// after the colon that existing clients compare against.
func (e *ErrorResponse) Body() []byte {
	msg, err := json.Marshal(e.Message)
	if err != nil {
		msg = []byte(`"internal error"`)
	}
	out := make([]byte, 0, len(msg)+12)
	out = append(out, `{"error": `...)
	out = append(out, msg...)
	out = append(out, '}')
	return out
}

// Error implements the error interface.
func (e *ErrorResponse) Error() string {
	return e.Message
}
