package middleware

import (
	"net/http"
	"time"

	"github.com/tapilab/azure-openai-proxy/pkg/telemetry/logging"
)

// RequestRecorder receives per-route request outcomes. metrics.Collector
// implements it.
type RequestRecorder interface {
	RecordRequest(route string, status int, duration time.Duration)
}

// Instrument tags requests with the route name and records their status and
// duration. recorder may be nil.
func Instrument(route string, recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			ctx := logging.WithRoute(r.Context(), route)
			next.ServeHTTP(rw, r.WithContext(ctx))

			if recorder != nil {
				recorder.RecordRequest(route, rw.status(r), time.Since(start))
			}
		})
	}
}
