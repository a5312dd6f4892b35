// Package handlers provides HTTP request handlers for the proxy server.
//
// A single ForwardHandler, parameterised by upstream.Route, serves both proxy
// endpoints. Each request runs the same pipeline:
//
//  1. Reject anything but POST (405, Allow: POST)
//  2. Read the body and check it is well-formed JSON (400 / 413)
//  3. Obtain a bearer token from the credential provider (500 on failure)
//  4. Forward the untouched body upstream, once
//  5. Relay the upstream status, body and content-type verbatim
//
// Upstream 4xx and 5xx responses are relayed like any other response. Local
// errors use the {"error": "<message>"} body.
//
// # Health Checks
//
// HealthHandler answers liveness probes unconditionally. ReadyHandler reports
// ready only while a token can be obtained:
//
//	livenessProbe:
//	  httpGet:
//	    path: /health
//	    port: 8080
//	readinessProbe:
//	  httpGet:
//	    path: /ready
//	    port: 8080
package handlers
