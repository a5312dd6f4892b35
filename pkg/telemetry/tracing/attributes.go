package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. HTTP keys follow the OpenTelemetry semantic conventions;
// proxy-specific keys use the "aoai." prefix.
const (
	AttrHTTPMethod     = "http.request.method"
	AttrHTTPStatusCode = "http.response.status_code"
	AttrURLPath        = "url.path"
	AttrServerAddress  = "server.address"

	AttrRoute             = "aoai.route"
	AttrRequestID         = "aoai.request_id"
	AttrDeployment        = "aoai.deployment"
	AttrAPIVersion        = "aoai.api_version"
	AttrUpstreamRequestID = "aoai.upstream.request_id"
	AttrRequestBytes      = "aoai.request.bytes"
	AttrResponseBytes     = "aoai.response.bytes"
	AttrErrorType         = "aoai.error.type"
)

// SetHTTPStatus records status on span. Server spans are marked as errors
// for 5xx only; client spans for any 4xx or 5xx, following the HTTP
// semantic conventions.
func SetHTTPStatus(span trace.Span, status int, kind trace.SpanKind) {
	span.SetAttributes(attribute.Int(AttrHTTPStatusCode, status))

	threshold := http.StatusInternalServerError
	if kind == trace.SpanKindClient {
		threshold = http.StatusBadRequest
	}
	if status >= threshold {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

// SetError marks the span as failed and records the error.
func SetError(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	if errorType != "" {
		span.SetAttributes(attribute.String(AttrErrorType, errorType))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
