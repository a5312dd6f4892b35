package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/tapilab/azure-openai-proxy/pkg/credential"
	"github.com/tapilab/azure-openai-proxy/pkg/proxy"
)

// DefaultReadyTimeout bounds the token check made by ReadyHandler.
const DefaultReadyTimeout = 5 * time.Second

// HealthHandler handles health check requests for liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// ReadyHandler reports ready while the credential provider can supply a token.
type ReadyHandler struct {
	credentials credential.Provider
	timeout     time.Duration
}

// NewReadyHandler creates a new readiness check handler.
func NewReadyHandler(credentials credential.Provider) *ReadyHandler {
	return &ReadyHandler{credentials: credentials, timeout: DefaultReadyTimeout}
}

// ServeHTTP implements http.Handler for readiness checks.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	response := map[string]interface{}{}

	token, err := h.credentials.GetToken(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Readiness check failed to obtain token", "error", err)
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	} else {
		response["token_expires_in_seconds"] = int64(time.Until(token.ExpiresOn).Seconds())
	}

	response["status"] = status
	response["timestamp"] = time.Now().Unix()

	_ = proxy.WriteJSONResponse(w, statusCode, response)
}
