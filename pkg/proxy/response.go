package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tapilab/azure-openai-proxy/pkg/proxy/types"
	"github.com/tapilab/azure-openai-proxy/pkg/upstream"
)

// DefaultContentType is used when the upstream omits Content-Type.
const DefaultContentType = "application/json"

// Relay writes resp to w: the upstream status, body bytes and content-type,
// defaulting the content-type to application/json only when it is absent.
func Relay(w http.ResponseWriter, resp *upstream.Response) error {
	contentType := resp.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)

	if _, err := w.Write(resp.Body); err != nil {
		return fmt.Errorf("failed to write relayed body: %w", err)
	}
	return nil
}

// WriteJSONResponse writes a JSON response to the HTTP response writer.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes a local error body with its status code.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	body := errResp.Body()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(errResp.StatusCode)

	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write error response: %w", err)
	}
	return nil
}
