// Package types defines the error body the proxy writes for failures it
// generates itself.
//
// Upstream responses are relayed byte for byte and never pass through these
// types. Local failures use a single flat shape so callers that already
// handle the Azure Functions deployment keep working:
//
//	{"error": "Invalid JSON"}
package types
