// Package logging provides structured logging with secret redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging in JSON or text format
//   - Redaction of bearer tokens, JWTs, and keys before they reach the output
//   - Request-scoped fields (request_id, route) pulled from the context
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactSecrets: true,
//	})
//
//	// Route package-level slog calls through the same pipeline
//	slog.SetDefault(logger.Slog())
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "Forwarding request",
//	    "authorization", "Bearer eyJ0eXAi...", // logged as "Bear***"
//	)
//
// Redaction is applied by a slog.Handler, so it covers every record written
// through the logger, including attributes attached with With.
package logging
