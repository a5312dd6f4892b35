package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generates request ID when not present", func(t *testing.T) {
		var seen string
		handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if seen == "" {
			t.Fatal("expected request ID in context")
		}
		if _, err := uuid.Parse(seen); err != nil {
			t.Errorf("generated ID %q is not a UUID: %v", seen, err)
		}
		if got := rec.Header().Get(RequestIDHeader); got != seen {
			t.Errorf("response header = %q, want %q", got, seen)
		}
	})

	t.Run("uses existing request ID from header", func(t *testing.T) {
		var seen string
		handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodPost, "/v1/responses", nil)
		req.Header.Set(RequestIDHeader, "caller-id-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if seen != "caller-id-123" {
			t.Errorf("context ID = %q, want caller-id-123", seen)
		}
		if got := rec.Header().Get(RequestIDHeader); got != "caller-id-123" {
			t.Errorf("response header = %q, want caller-id-123", got)
		}
	})

	t.Run("replaces unusable request IDs", func(t *testing.T) {
		tests := []struct {
			name string
			id   string
		}{
			{"too long", strings.Repeat("a", maxRequestIDLength+1)},
			{"contains space", "bad id"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var seen string
				handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					seen = GetRequestID(r.Context())
				}))

				req := httptest.NewRequest(http.MethodPost, "/v1/responses", nil)
				req.Header.Set(RequestIDHeader, tt.id)
				handler.ServeHTTP(httptest.NewRecorder(), req)

				if seen == tt.id {
					t.Errorf("expected %q to be replaced", tt.id)
				}
				if _, err := uuid.Parse(seen); err != nil {
					t.Errorf("replacement %q is not a UUID", seen)
				}
			})
		}
	})

	t.Run("unique IDs across requests", func(t *testing.T) {
		ids := make(map[string]bool)
		handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ids[GetRequestID(r.Context())] = true
		}))

		for i := 0; i < 100; i++ {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		}
		if len(ids) != 100 {
			t.Errorf("got %d unique IDs, want 100", len(ids))
		}
	})
}
