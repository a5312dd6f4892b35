package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/tapilab/azure-openai-proxy/pkg/config"
	"github.com/tapilab/azure-openai-proxy/pkg/telemetry/logging"
	"github.com/tapilab/azure-openai-proxy/pkg/telemetry/tracing"
)

type captured struct {
	method  string
	path    string
	query   string
	headers http.Header
	body    []byte
}

func newUpstream(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.method = r.Method
		c.path = r.URL.EscapedPath()
		c.query = r.URL.RawQuery
		c.headers = r.Header.Clone()
		c.body, _ = io.ReadAll(r.Body)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func newTestForwarder(base string, opts Options) *Forwarder {
	return NewForwarder(NewTargetStore(Target{
		BaseURL:      base,
		Deployment:   "dep1",
		APIVersion:   "2024-05-01-preview",
		V1APIVersion: "preview",
	}), opts)
}

type metricsRecorder struct {
	mu      sync.Mutex
	latency []string
	errs    []string
}

func (m *metricsRecorder) RecordUpstreamLatency(route string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = append(m.latency, route)
}

func (m *metricsRecorder) RecordUpstreamError(route, errorType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, route+":"+errorType)
}

func TestForward_ChatCompletions(t *testing.T) {
	srv, got := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"chatcmpl-1"}`))
	})

	payload := []byte(`{"model":"x","messages":[]}`)
	ctx := logging.WithRequestID(context.Background(), "req-123")

	resp, err := newTestForwarder(srv.URL+"/", Options{}).Forward(ctx, ChatCompletions, payload, "tok-1")
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	if got.method != http.MethodPost {
		t.Errorf("expected POST, got %s", got.method)
	}
	if got.path != "/openai/deployments/dep1/chat/completions" {
		t.Errorf("unexpected path %q", got.path)
	}
	if got.query != "api-version=2024-05-01-preview" {
		t.Errorf("unexpected query %q", got.query)
	}
	if h := got.headers.Get("Authorization"); h != "Bearer tok-1" {
		t.Errorf("unexpected Authorization %q", h)
	}
	if h := got.headers.Get("Content-Type"); h != "application/json" {
		t.Errorf("unexpected Content-Type %q", h)
	}
	if h := got.headers.Get(ClientRequestIDHeader); h != "req-123" {
		t.Errorf("unexpected client request id %q", h)
	}

	var sent, want any
	json.Unmarshal(got.body, &sent)
	json.Unmarshal(payload, &want)
	if !reflect.DeepEqual(sent, want) {
		t.Errorf("forwarded body %s does not match %s", got.body, payload)
	}

	if resp.StatusCode != http.StatusOK || string(resp.Body) != `{"id":"chatcmpl-1"}` {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.ContentType != "application/json; charset=utf-8" {
		t.Errorf("unexpected content type %q", resp.ContentType)
	}
}

func TestForward_Responses(t *testing.T) {
	srv, got := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"response"}`))
	})

	_, err := newTestForwarder(srv.URL, Options{}).Forward(context.Background(), Responses, []byte(`{"input":"hi"}`), "tok")
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	if got.path != "/openai/v1/responses" || got.query != "api-version=preview" {
		t.Errorf("unexpected upstream target %s?%s", got.path, got.query)
	}
	if string(got.body) != `{"input":"hi"}` {
		t.Errorf("body not forwarded verbatim: %s", got.body)
	}
}

func TestForward_ErrorStatusIsNotAnError(t *testing.T) {
	srv, _ := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	})

	m := &metricsRecorder{}
	resp, err := newTestForwarder(srv.URL, Options{Metrics: m}).Forward(context.Background(), ChatCompletions, []byte(`{}`), "tok")
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"error":"rate limited"}` {
		t.Errorf("unexpected body %s", resp.Body)
	}
	if len(m.latency) != 1 || len(m.errs) != 0 {
		t.Errorf("unexpected metrics latency=%v errs=%v", m.latency, m.errs)
	}
}

func TestForward_MissingContentType(t *testing.T) {
	srv, _ := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("accepted"))
	})

	resp, err := newTestForwarder(srv.URL, Options{}).Forward(context.Background(), Responses, []byte(`{}`), "tok")
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if resp.ContentType != "" {
		t.Errorf("expected empty content type, got %q", resp.ContentType)
	}
}

func TestForward_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv, _ := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	m := &metricsRecorder{}
	_, err := newTestForwarder(srv.URL, Options{Timeout: 50 * time.Millisecond, Metrics: m}).
		Forward(context.Background(), ChatCompletions, []byte(`{}`), "tok")

	var tErr *TimeoutError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
	if tErr.Timeout != 50*time.Millisecond {
		t.Errorf("unexpected timeout %v", tErr.Timeout)
	}
	if len(m.errs) != 1 || m.errs[0] != "chat_completions:timeout" {
		t.Errorf("unexpected error metrics %v", m.errs)
	}
}

func TestForward_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := newTestForwarder(base, Options{}).Forward(context.Background(), Responses, []byte(`{}`), "tok")

	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
	if trErr.Route != "responses" {
		t.Errorf("unexpected route %q", trErr.Route)
	}
}

func TestForward_ResponseTooLarge(t *testing.T) {
	srv, _ := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 64))
	})

	_, err := newTestForwarder(srv.URL, Options{MaxResponseBytes: 16}).Forward(context.Background(), Responses, []byte(`{}`), "tok")

	var tooLarge *ResponseTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected ResponseTooLargeError, got %T: %v", err, err)
	}
}

func TestForward_UsesSwappedTarget(t *testing.T) {
	srv, got := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	store := NewTargetStore(Target{BaseURL: srv.URL, Deployment: "old", APIVersion: "v1"})
	f := NewForwarder(store, Options{})

	store.Store(Target{BaseURL: srv.URL, Deployment: "new", APIVersion: "v2"})
	if _, err := f.Forward(context.Background(), ChatCompletions, []byte(`{}`), "tok"); err != nil {
		t.Fatal(err)
	}

	if got.path != "/openai/deployments/new/chat/completions" || got.query != "api-version=v2" {
		t.Errorf("forwarder did not use the swapped target: %s?%s", got.path, got.query)
	}
	if f.Target().Deployment != "new" {
		t.Error("Target() did not return the current snapshot")
	}
}

func TestForward_RecordsClientSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := tracing.NewWithExporter(config.TracingConfig{Enabled: true}, "test", sdktrace.AlwaysSample(), exporter)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	srv, got := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("apim-request-id", "azure-123")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":"429"}}`))
	})
	f := newTestForwarder(srv.URL, Options{})

	ctx, parent := tracing.Start(context.Background(), "POST /v1/chat/completions")
	if _, err := f.Forward(ctx, ChatCompletions, []byte(`{"messages":[]}`), "tok"); err != nil {
		t.Fatal(err)
	}
	parent.End()

	if got.headers.Get("traceparent") == "" {
		t.Error("traceparent was not propagated upstream")
	}

	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatal(err)
	}
	var client *tracetest.SpanStub
	spans := exporter.GetSpans()
	for i := range spans {
		if spans[i].Name == "azure_openai.chat_completions" {
			client = &spans[i]
		}
	}
	if client == nil {
		t.Fatalf("client span not exported: %d spans", len(spans))
	}
	if client.SpanKind != trace.SpanKindClient {
		t.Errorf("span kind = %v, want client", client.SpanKind)
	}
	if client.Parent.SpanID() != parent.SpanContext().SpanID() {
		t.Error("client span is not a child of the caller span")
	}
	if client.Status.Code != codes.Error {
		t.Errorf("status = %v, want error for 429", client.Status.Code)
	}

	attrs := map[string]string{}
	for _, kv := range client.Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	want := map[string]string{
		tracing.AttrRoute:             "chat_completions",
		tracing.AttrDeployment:        "dep1",
		tracing.AttrAPIVersion:        "2024-05-01-preview",
		tracing.AttrHTTPStatusCode:    "429",
		tracing.AttrUpstreamRequestID: "azure-123",
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attribute %s = %q, want %q", k, attrs[k], v)
		}
	}
}
