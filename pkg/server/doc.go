// Package server provides the HTTP server that fronts the upstream resource.
//
// The server ties together the proxy handlers and middleware and manages the
// listener lifecycle: start, TLS termination, graceful shutdown on SIGINT or
// SIGTERM, and context cancellation.
//
// # Routes
//
//	POST /v1/chat/completions  forward to the deployment chat completions API
//	POST /v1/responses         forward to the v1 responses API
//	GET  /health               liveness
//	GET  /ready                readiness (a token can be obtained)
//	GET  /metrics              Prometheus metrics, when enabled
//
// # Basic Usage
//
//	srv := server.NewServer(cfg, server.Dependencies{
//	    Credentials: provider,
//	    Forwarder:   forwarder,
//	    Metrics:     collector,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until the context is cancelled, a signal arrives, Shutdown is
// called, or the listener fails.
//
// # TLS
//
// When security.tls.enabled is set the server requires TLS 1.3 and serves the
// configured certificate and key. The files are checked for changes every
// security.tls.reload_interval, so a renewed certificate is served without a
// restart; a pair that fails to load leaves the current one in place.
package server
