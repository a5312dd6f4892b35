package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tapilab/azure-openai-proxy/pkg/config"
	"github.com/tapilab/azure-openai-proxy/pkg/credential"
	"github.com/tapilab/azure-openai-proxy/pkg/proxy/middleware"
	"github.com/tapilab/azure-openai-proxy/pkg/telemetry/metrics"
	"github.com/tapilab/azure-openai-proxy/pkg/upstream"
)

type staticProvider struct{ token string }

func (p staticProvider) GetToken(context.Context) (credential.Token, error) {
	return credential.Token{Value: p.token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Proxy.ListenAddress = "127.0.0.1:0"
	cfg.Upstream.BaseURL = baseURL
	cfg.Upstream.Deployment = "dep1"
	config.ApplyDefaults(cfg)
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, up *httptest.Server, collector *metrics.Collector) *Server {
	t.Helper()
	targets := upstream.NewTargetStore(upstream.TargetFromConfig(cfg.Upstream))
	fwd := upstream.NewForwarder(targets, upstream.OptionsFromConfig(cfg.Upstream))
	return NewServer(cfg, Dependencies{
		Credentials: staticProvider{token: "tok"},
		Forwarder:   fwd,
		Metrics:     collector,
	})
}

func newEchoUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"path":"`+r.URL.Path+`","auth":"`+r.Header.Get("Authorization")+`"}`)
	}))
	t.Cleanup(up.Close)
	return up
}

func TestServerRoutes(t *testing.T) {
	up := newEchoUpstream(t)
	cfg := testConfig(up.URL)
	srv := newTestServer(t, cfg, up, nil)
	h := srv.Handler()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"chat completions", http.MethodPost, "/v1/chat/completions", `{}`, http.StatusOK, "/openai/deployments/dep1/chat/completions"},
		{"responses", http.MethodPost, "/v1/responses", `{}`, http.StatusOK, "/openai/v1/responses"},
		{"invalid json", http.MethodPost, "/v1/responses", `nope`, http.StatusBadRequest, `{"error": "Invalid JSON"}`},
		{"method not allowed", http.MethodGet, "/v1/chat/completions", ``, http.StatusMethodNotAllowed, ""},
		{"health", http.MethodGet, "/health", ``, http.StatusOK, `"ok"`},
		{"ready", http.MethodGet, "/ready", ``, http.StatusOK, `"ready"`},
		{"unknown", http.MethodPost, "/v1/embeddings", `{}`, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
			if rec.Header().Get(middleware.RequestIDHeader) == "" {
				t.Error("expected X-Request-ID on every response")
			}
		})
	}
}

func TestServerFunctionKeys(t *testing.T) {
	up := newEchoUpstream(t)
	cfg := testConfig(up.URL)
	cfg.Security.FunctionKeys.Enabled = true
	cfg.Security.FunctionKeys.Keys = []string{"secret"}
	h := newTestServer(t, cfg, up, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/responses", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without key = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/responses?code=secret", strings.NewReader(`{}`))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status with key = %d, want 200", rec.Code)
	}

	// probes stay open
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestServerMetricsEndpoint(t *testing.T) {
	up := newEchoUpstream(t)
	cfg := testConfig(up.URL)
	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
	h := newTestServer(t, cfg, up, collector).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/responses", strings.NewReader(`{}`)))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "aoai_proxy_requests_total") {
		t.Error("expected aoai_proxy_requests_total in metrics output")
	}
}

func TestServerStartAndShutdown(t *testing.T) {
	up := newEchoUpstream(t)
	cfg := testConfig(up.URL)
	srv := newTestServer(t, cfg, up, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for srv.Addr() == nil || !srv.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("server did not start")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Post("http://"+srv.Addr().String()+"/v1/responses", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	if srv.IsRunning() {
		t.Error("server still reports running")
	}
}

func TestServerStartTwice(t *testing.T) {
	up := newEchoUpstream(t)
	srv := newTestServer(t, testConfig(up.URL), up, nil)

	done := make(chan error, 1)
	go func() { done <- srv.Start(context.Background()) }()

	deadline := time.Now().Add(5 * time.Second)
	for !srv.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("server did not start")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := srv.Start(context.Background()); err == nil {
		t.Error("expected error starting a running server")
	}

	srv.Stop()
	if err := <-done; err != nil {
		t.Errorf("Start returned %v", err)
	}
}

func TestServerRequiresDependencies(t *testing.T) {
	srv := NewServer(testConfig("https://example.com"), Dependencies{})
	if err := srv.Start(context.Background()); err == nil {
		t.Error("expected error without dependencies")
	}
}
