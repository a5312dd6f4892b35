package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tapilab/azure-openai-proxy/pkg/telemetry/tracing"
)

// TracingMiddleware starts a server span for each request, continuing any
// trace the caller propagated in traceparent. With no tracer provider
// configured the span is a no-op.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.Extract(r.Context(), r.Header)
		ctx, span := tracing.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String(tracing.AttrHTTPMethod, r.Method),
				attribute.String(tracing.AttrURLPath, r.URL.Path),
			),
		)
		defer span.End()

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r.WithContext(ctx))

		// RequestID runs inside this middleware and echoes the ID it settled on.
		if id := rw.Header().Get(RequestIDHeader); id != "" {
			span.SetAttributes(attribute.String(tracing.AttrRequestID, id))
		}
		tracing.SetHTTPStatus(span, rw.statusCode, trace.SpanKindServer)
	})
}
