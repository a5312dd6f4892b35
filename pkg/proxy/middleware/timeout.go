package middleware

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds the whole handling of a request, including token
// acquisition and the upstream call, by attaching a deadline to its context.
// Handlers see the deadline through ctx.Done() and report it through their
// normal error path. A non-positive timeout disables the middleware.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
