package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tapilab/azure-openai-proxy/pkg/proxy"
)

// responseWriter records the status and body size written by inner handlers.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int64
	written    bool
}

// newResponseWriter wraps w, reusing an existing wrapper so nested
// middleware observe the same status.
func newResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.written {
		return
	}
	rw.statusCode = code
	rw.written = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

// status is the code to report for r. A handler that wrote nothing because
// the client cancelled is reported as 499, not the implicit 200.
func (rw *responseWriter) status(r *http.Request) int {
	if !rw.written && errors.Is(r.Context().Err(), context.Canceled) {
		return proxy.StatusClientClosedRequest
	}
	return rw.statusCode
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// LoggingMiddleware logs one line per request once the response is written:
// error level for 5xx, warn for 4xx, info otherwise. Client cancellations are
// logged at info with status 499.
//
// It sits outside RequestIDMiddleware, so the request ID is taken from the
// echoed response header rather than the context.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		slog.DebugContext(r.Context(), "request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		next.ServeHTTP(rw, r)

		status := rw.status(r)
		level := slog.LevelInfo
		switch {
		case status == proxy.StatusClientClosedRequest:
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		slog.Log(r.Context(), level, "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", rw.bytes,
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", rw.Header().Get(RequestIDHeader),
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)
	})
}
