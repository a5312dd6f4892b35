// Package telemetry groups the proxy's observability packages.
//
//   - logging: slog construction, secret redaction, request-scoped fields
//   - metrics: Prometheus collector on a private registry
//   - tracing: OpenTelemetry tracer provider and span helpers
//
// Each subpackage is wired independently by cmd/aoai-proxy; there is no
// aggregate telemetry object.
package telemetry
