// Package proxy contains the request validation, error mapping and response
// relay used by the forwarding handlers.
//
// The request path is:
//
//	ValidateJSON -> credential.Provider.GetToken -> upstream.Forwarder.Forward -> Relay
//
// ValidateJSON reads the body once, under a size limit, and checks that it is
// well-formed JSON. The bytes are forwarded as read, so key order, spacing
// and number formatting survive. Relay copies the upstream status, body and
// content-type. HandleError maps failures that produced no upstream response
// onto local error bodies.
//
// Subpackages:
//   - handlers: HTTP handlers for the proxy routes and probes
//   - middleware: request ID, logging, recovery, CORS, function keys
//   - types: the local error body
package proxy
