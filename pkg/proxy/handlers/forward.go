package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tapilab/azure-openai-proxy/pkg/credential"
	"github.com/tapilab/azure-openai-proxy/pkg/proxy"
	"github.com/tapilab/azure-openai-proxy/pkg/proxy/types"
	"github.com/tapilab/azure-openai-proxy/pkg/upstream"
)

// Forwarder sends a validated body upstream. *upstream.Forwarder implements it.
type Forwarder interface {
	Forward(ctx context.Context, route upstream.Route, payload []byte, token string) (*upstream.Response, error)
}

// ForwardHandler relays POST requests for one route to the upstream resource.
type ForwardHandler struct {
	route        upstream.Route
	credentials  credential.Provider
	forwarder    Forwarder
	maxBodyBytes int64
}

// NewForwardHandler creates a handler for route. maxBodyBytes of zero or
// less uses proxy.MaxRequestBodySize.
func NewForwardHandler(route upstream.Route, credentials credential.Provider, forwarder Forwarder, maxBodyBytes int64) *ForwardHandler {
	return &ForwardHandler{
		route:        route,
		credentials:  credentials,
		forwarder:    forwarder,
		maxBodyBytes: maxBodyBytes,
	}
}

// Route returns the route this handler serves.
func (h *ForwardHandler) Route() upstream.Route {
	return h.route
}

// ServeHTTP implements http.Handler.
func (h *ForwardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeError(ctx, w, types.NewMethodNotAllowedError(), nil)
		return
	}

	payload, err := proxy.ValidateJSON(r, h.maxBodyBytes)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	start := time.Now()
	token, err := h.credentials.GetToken(ctx)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	tokenWait := time.Since(start)

	resp, err := h.forwarder.Forward(ctx, h.route, payload, token.Value)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	if err := proxy.Relay(w, resp); err != nil {
		slog.WarnContext(ctx, "Failed to relay upstream response",
			"route", h.route.Name,
			"status", resp.StatusCode,
			"error", err,
		)
		return
	}

	slog.InfoContext(ctx, "Relayed upstream response",
		"route", h.route.Name,
		"status", resp.StatusCode,
		"request_bytes", len(payload),
		"response_bytes", len(resp.Body),
		"token_wait_ms", tokenWait.Milliseconds(),
	)
}

// fail maps err to a local error response.
func (h *ForwardHandler) fail(ctx context.Context, w http.ResponseWriter, err error) {
	errResp := proxy.HandleError(err)

	if errResp.StatusCode == proxy.StatusClientClosedRequest {
		slog.InfoContext(ctx, "Client closed request before upstream responded",
			"route", h.route.Name,
			"error", err,
		)
		return
	}

	h.writeError(ctx, w, errResp, err)
}

func (h *ForwardHandler) writeError(ctx context.Context, w http.ResponseWriter, errResp *types.ErrorResponse, cause error) {
	level := slog.LevelWarn
	if errResp.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	attrs := []any{
		"route", h.route.Name,
		"status", errResp.StatusCode,
		"error_type", errResp.Type,
	}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	slog.Log(ctx, level, errResp.Message, attrs...)

	if err := proxy.WriteErrorResponse(w, errResp); err != nil && !errors.Is(err, context.Canceled) {
		slog.WarnContext(ctx, "Failed to write error response", "error", err)
	}
}
