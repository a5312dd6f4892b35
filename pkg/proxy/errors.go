package proxy

import (
	"context"
	"errors"

	"github.com/tapilab/azure-openai-proxy/pkg/credential"
	"github.com/tapilab/azure-openai-proxy/pkg/proxy/types"
	"github.com/tapilab/azure-openai-proxy/pkg/upstream"
)

// HandleError converts a failure that produced no upstream response into a
// local error body. Upstream responses, including 4xx and 5xx, never reach
// this function; they are relayed.
//
//   - caller cancellation (context.Canceled anywhere in the chain): 499
//   - RequestError: its own status (400, 413)
//   - credential.AuthError: 500
//   - upstream.TimeoutError: 504
//   - upstream.TransportError, upstream.ResponseTooLargeError: 502
//   - anything else: 500
//
// Messages never include the upstream URL or the underlying cause.
func HandleError(err error) *types.ErrorResponse {
	if errors.Is(err, context.Canceled) {
		return types.NewErrorResponse(StatusClientClosedRequest, "Client closed request", types.ErrorTypeBadGateway)
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var authErr *credential.AuthError
	if errors.As(err, &authErr) {
		return types.NewAuthenticationError("Failed to obtain upstream credential")
	}

	var timeoutErr *upstream.TimeoutError
	if errors.As(err, &timeoutErr) {
		return types.NewGatewayTimeoutError("Upstream request timed out")
	}

	var transportErr *upstream.TransportError
	if errors.As(err, &transportErr) {
		return types.NewBadGatewayError("Upstream request failed")
	}

	var tooLarge *upstream.ResponseTooLargeError
	if errors.As(err, &tooLarge) {
		return types.NewBadGatewayError("Upstream response too large")
	}

	return types.NewServerError("An internal error occurred")
}

// StatusClientClosedRequest is logged when the caller went away before the
// upstream answered. Nothing is delivered to the caller in that case.
const StatusClientClosedRequest = 499
