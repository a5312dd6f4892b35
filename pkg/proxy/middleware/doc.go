// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// # Middleware Chain
//
// The server wraps the whole mux as:
//
//	handler = Recovery(Tracing(Logging(RequestID(CORS(Timeout(mux))))))
//
// and each proxy route additionally as:
//
//	route = Instrument(name, metrics)(FunctionKey(keys)(forward))
//
// Order (innermost to outermost for the global chain):
//  1. Timeout: attach a deadline to the request context
//  2. CORS: add Cross-Origin Resource Sharing headers
//  3. RequestID: generate or accept X-Request-ID and propagate it
//  4. Logging: log method, path, status and latency
//  5. Tracing: start a server span, continuing an inbound traceparent
//  6. Recovery: turn panics into a 500 error body
//
// Instrument tags the context with the route name and records per-route
// request metrics. FunctionKey rejects requests that do not carry one of the
// configured keys in the x-functions-key header or the code query parameter.
package middleware
