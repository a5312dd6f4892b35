package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tapilab/azure-openai-proxy/pkg/config"
	"github.com/tapilab/azure-openai-proxy/pkg/telemetry/logging"
	"github.com/tapilab/azure-openai-proxy/pkg/telemetry/tracing"
)

// ClientRequestIDHeader carries the proxy request ID to Azure for
// correlation with service-side logs.
const ClientRequestIDHeader = "x-ms-client-request-id"

// Response is what the upstream returned, relayed without interpretation.
type Response struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

// Metrics receives upstream call outcomes. metrics.Collector implements it.
type Metrics interface {
	RecordUpstreamLatency(route string, latency time.Duration)
	RecordUpstreamError(route, errorType string)
}

// Forwarder sends request bodies to the upstream resource.
type Forwarder struct {
	client           *http.Client
	targets          *TargetStore
	timeout          time.Duration
	maxResponseBytes int64
	metrics          Metrics
}

// Options configures a Forwarder.
type Options struct {
	// Timeout bounds one upstream call. Defaults to config.DefaultUpstreamTimeout.
	Timeout time.Duration

	// MaxResponseBytes caps the upstream body read.
	MaxResponseBytes int64

	// MaxIdleConns and IdleConnTimeout tune the connection pool.
	MaxIdleConns    int
	IdleConnTimeout time.Duration

	// Transport overrides the HTTP transport (tests, custom TLS).
	Transport http.RoundTripper

	// Metrics is optional.
	Metrics Metrics
}

// OptionsFromConfig maps the upstream config section to Options.
func OptionsFromConfig(cfg config.UpstreamConfig) Options {
	return Options{
		Timeout:          cfg.Timeout,
		MaxResponseBytes: cfg.MaxResponseBytes,
		MaxIdleConns:     cfg.MaxIdleConns,
		IdleConnTimeout:  cfg.IdleConnTimeout,
	}
}

// NewForwarder creates a Forwarder reading its target from targets.
func NewForwarder(targets *TargetStore, opts Options) *Forwarder {
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultUpstreamTimeout
	}
	if opts.MaxResponseBytes <= 0 {
		opts.MaxResponseBytes = config.DefaultUpstreamMaxResponseBytes
	}

	transport := opts.Transport
	if transport == nil {
		maxIdle := opts.MaxIdleConns
		if maxIdle <= 0 {
			maxIdle = config.DefaultUpstreamMaxIdleConns
		}
		idle := opts.IdleConnTimeout
		if idle <= 0 {
			idle = config.DefaultUpstreamIdleConnTimeout
		}
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        maxIdle,
			MaxIdleConnsPerHost: maxIdle,
			IdleConnTimeout:     idle,
			ForceAttemptHTTP2:   true,
		}
	}

	return &Forwarder{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		targets:          targets,
		timeout:          opts.Timeout,
		maxResponseBytes: opts.MaxResponseBytes,
		metrics:          opts.Metrics,
	}
}

// Target returns the snapshot the next Forward will use.
func (f *Forwarder) Target() Target {
	return f.targets.Load()
}

// Forward POSTs payload to the upstream URL for route with the bearer token
// attached. It makes exactly one attempt.
func (f *Forwarder) Forward(ctx context.Context, route Route, payload []byte, token string) (*Response, error) {
	target := f.targets.Load()

	ctx, span := tracing.Start(ctx, "azure_openai."+route.Name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(tracing.AttrRoute, route.Name),
			attribute.String(tracing.AttrAPIVersion, route.APIVersion(target)),
			attribute.Int(tracing.AttrRequestBytes, len(payload)),
		),
	)
	defer span.End()
	if route.UsesDeployment {
		span.SetAttributes(attribute.String(tracing.AttrDeployment, target.Deployment))
	}

	upstreamURL, err := BuildURL(target, route)
	if err != nil {
		tracing.SetError(span, err, "url")
		return nil, fmt.Errorf("failed to build upstream URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, upstreamURL, bytes.NewReader(payload))
	if err != nil {
		tracing.SetError(span, err, "request")
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if requestID := logging.GetRequestID(ctx); requestID != "" {
		req.Header.Set(ClientRequestIDHeader, requestID)
	}
	tracing.Inject(ctx, req.Header)
	span.SetAttributes(
		attribute.String(tracing.AttrHTTPMethod, http.MethodPost),
		attribute.String(tracing.AttrServerAddress, req.URL.Host),
	)

	slog.DebugContext(ctx, "Forwarding request upstream",
		"route", route.Name,
		"url", upstreamURL,
		"bytes", len(payload),
	)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.fail(ctx, span, route, upstreamURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxResponseBytes+1))
	if err != nil {
		return nil, f.fail(ctx, span, route, upstreamURL, err)
	}
	if int64(len(body)) > f.maxResponseBytes {
		f.recordError(route, "too_large")
		tooLarge := &ResponseTooLargeError{Route: route.Name, Limit: f.maxResponseBytes}
		tracing.SetError(span, tooLarge, "too_large")
		return nil, tooLarge
	}

	latency := time.Since(start)
	if f.metrics != nil {
		f.metrics.RecordUpstreamLatency(route.Name, latency)
	}

	azureRequestID := resp.Header.Get("apim-request-id")
	tracing.SetHTTPStatus(span, resp.StatusCode, trace.SpanKindClient)
	span.SetAttributes(attribute.Int(tracing.AttrResponseBytes, len(body)))
	if azureRequestID != "" {
		span.SetAttributes(attribute.String(tracing.AttrUpstreamRequestID, azureRequestID))
	}

	slog.DebugContext(ctx, "Upstream responded",
		"route", route.Name,
		"status", resp.StatusCode,
		"latency_ms", latency.Milliseconds(),
		"azure_request_id", azureRequestID,
	)

	return &Response{
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// fail classifies err and records it on span.
func (f *Forwarder) fail(ctx context.Context, span trace.Span, route Route, upstreamURL string, err error) error {
	errorType, classified := f.classify(ctx, route, upstreamURL, err)
	tracing.SetError(span, classified, errorType)
	return classified
}

// classify turns a client error into TimeoutError or TransportError, along
// with the error type label used for metrics.
func (f *Forwarder) classify(ctx context.Context, route Route, upstreamURL string, err error) (string, error) {
	var netErr net.Error
	timedOut := errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())

	errorType := "transport"
	switch {
	case timedOut:
		errorType = "timeout"
	case errors.Is(ctx.Err(), context.Canceled):
		errorType = "canceled"
	}
	f.recordError(route, errorType)

	if timedOut {
		return errorType, &TimeoutError{Route: route.Name, Timeout: f.timeout, Cause: err}
	}
	return errorType, &TransportError{Route: route.Name, URL: upstreamURL, Cause: err}
}

func (f *Forwarder) recordError(route Route, errorType string) {
	if f.metrics != nil {
		f.metrics.RecordUpstreamError(route.Name, errorType)
	}
}
