// Package tracing provides OpenTelemetry distributed tracing for the proxy.
//
// # Overview
//
// When telemetry.tracing.enabled is set, New installs a global tracer
// provider that batches spans to an OTLP gRPC collector, together with the
// W3C Trace Context and Baggage propagators. When it is not set, the global
// provider stays a no-op and every helper in this package costs close to
// nothing.
//
// Two spans are recorded per proxied request:
//
//   - a server span started by middleware.TracingMiddleware, continuing any
//     traceparent sent by the caller
//   - a client span around the upstream call started by the forwarder,
//     whose context is injected into the outgoing request headers
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: otel-collector:4317
//	    insecure: true
//	    sampler: ratio
//	    sample_ratio: 0.1
//
// # Usage
//
//	tracer, err := tracing.New(cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracing.Start(ctx, "azure_openai.chat_completions",
//	    trace.WithSpanKind(trace.SpanKindClient))
//	defer span.End()
//
// # Log Correlation
//
// TraceID and SpanID expose the active identifiers; the logging package adds
// them to every record written with a traced context.
package tracing
