package credential

import "fmt"

// AuthError indicates that no usable token could be obtained.
type AuthError struct {
	// Source names the backend that failed (e.g. "azure", "static").
	Source string

	// Message is a human-readable error message.
	Message string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credential %s: %s: %v", e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("credential %s: %s", e.Source, e.Message)
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError creates a new AuthError.
func NewAuthError(source, message string, err error) *AuthError {
	return &AuthError{Source: source, Message: message, Err: err}
}
