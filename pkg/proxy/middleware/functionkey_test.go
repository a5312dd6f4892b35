package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tapilab/azure-openai-proxy/pkg/config"
)

func TestFunctionKeyMiddleware(t *testing.T) {
	cfg := config.FunctionKeysConfig{
		Enabled: true,
		Keys:    []string{"key-one", "key-two"},
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
	}{
		{"header key", "key-one", "", http.StatusOK},
		{"second key", "key-two", "", http.StatusOK},
		{"query key", "", "key-one", http.StatusOK},
		{"missing key", "", "", http.StatusUnauthorized},
		{"wrong key", "nope", "", http.StatusUnauthorized},
		{"wrong query key", "", "nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/v1/chat/completions"
			if tt.query != "" {
				target += "?code=" + tt.query
			}
			req := httptest.NewRequest(http.MethodPost, target, nil)
			if tt.header != "" {
				req.Header.Set(config.DefaultFunctionKeyHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			FunctionKeyMiddleware(cfg)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if got := rec.Body.String(); got != `{"error": "Unauthorized"}` {
					t.Errorf("body = %q", got)
				}
			}
		})
	}

	t.Run("disabled passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/responses", nil)
		FunctionKeyMiddleware(config.FunctionKeysConfig{})(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}
