package types

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestErrorResponse_Body(t *testing.T) {
	if got := string(NewInvalidJSONError().Body()); got != `{"error": "Invalid JSON"}` {
		t.Errorf("unexpected body %q", got)
	}

	body := NewServerError(`quote " and <tag>`).Body()
	var decoded map[string]string
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if decoded["error"] != `quote " and <tag>` {
		t.Errorf("message did not round trip: %q", decoded["error"])
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		resp   *ErrorResponse
		status int
		typ    string
	}{
		{NewInvalidJSONError(), http.StatusBadRequest, ErrorTypeInvalidRequest},
		{NewRequestTooLargeError(), http.StatusRequestEntityTooLarge, ErrorTypeRequestTooLarge},
		{NewMethodNotAllowedError(), http.StatusMethodNotAllowed, ErrorTypeMethodNotAllowed},
		{NewUnauthorizedError(), http.StatusUnauthorized, ErrorTypeUnauthorized},
		{NewAuthenticationError("x"), http.StatusInternalServerError, ErrorTypeAuthentication},
		{NewBadGatewayError("x"), http.StatusBadGateway, ErrorTypeBadGateway},
		{NewServiceUnavailableError("x"), http.StatusServiceUnavailable, ErrorTypeServiceUnavailable},
		{NewGatewayTimeoutError("x"), http.StatusGatewayTimeout, ErrorTypeGatewayTimeout},
	}

	for _, tt := range tests {
		if tt.resp.StatusCode != tt.status || tt.resp.Type != tt.typ {
			t.Errorf("%s: got %d/%s, want %d/%s", tt.resp.Message, tt.resp.StatusCode, tt.resp.Type, tt.status, tt.typ)
		}
	}
}
