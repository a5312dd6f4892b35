package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/tapilab/azure-openai-proxy/pkg/config"
	"github.com/tapilab/azure-openai-proxy/pkg/proxy/types"
)

// FunctionKeyMiddleware requires one of cfg.Keys in the cfg.Header header or
// the cfg.QueryParam query parameter. Missing or unknown keys get 401 with
// {"error": "Unauthorized"}. When cfg.Enabled is false requests pass through.
func FunctionKeyMiddleware(cfg config.FunctionKeysConfig) func(http.Handler) http.Handler {
	header := cfg.Header
	if header == "" {
		header = config.DefaultFunctionKeyHeader
	}
	param := cfg.QueryParam
	if param == "" {
		param = config.DefaultFunctionKeyQueryParam
	}

	keys := make([][]byte, 0, len(cfg.Keys))
	for _, k := range cfg.Keys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(header)
			if presented == "" {
				presented = r.URL.Query().Get(param)
			}

			if presented == "" || !matchKey(keys, []byte(presented)) {
				slog.WarnContext(r.Context(), "Rejected request without a valid function key",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"key_present", presented != "",
				)
				errResp := types.NewUnauthorizedError()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(errResp.StatusCode)
				_, _ = w.Write(errResp.Body())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// matchKey compares presented against every key without short-circuiting.
func matchKey(keys [][]byte, presented []byte) bool {
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare(k, presented)
	}
	return match == 1
}
