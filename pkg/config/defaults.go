package config

import "time"

// Default values for configuration fields.
const (
	// Proxy defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 90 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576  // 1MB
	DefaultMaxBodyBytes    = 10485760 // 10MB
	DefaultCORSMaxAge      = 3600

	// Upstream defaults
	DefaultAPIVersion               = "2024-05-01-preview"
	DefaultV1APIVersion             = "preview"
	DefaultUpstreamTimeout          = 60 * time.Second
	DefaultUpstreamMaxResponseBytes = 64 << 20
	DefaultUpstreamMaxIdleConns     = 100
	DefaultUpstreamIdleConnTimeout  = 90 * time.Second

	// Credential defaults
	DefaultCredentialMode          = CredentialModeAzure
	DefaultCredentialScope         = "https://cognitiveservices.azure.com/.default"
	DefaultCredentialRefreshMargin = 5 * time.Minute

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "aoai"
	DefaultMetricsSubsystem   = "proxy"
	DefaultTracingSampler     = TracingSamplerRatio
	DefaultTracingSampleRatio = 0.1
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingTimeout     = 10 * time.Second
	DefaultTracingService     = "aoai-proxy"

	// Security defaults
	DefaultTLSReloadInterval     = time.Minute
	DefaultFunctionKeyHeader     = "x-functions-key"
	DefaultFunctionKeyQueryParam = "code"
)

// Credential modes.
const (
	CredentialModeAzure  = "azure"
	CredentialModeStatic = "static"
)

// Tracing samplers for traces that start at the proxy.
const (
	TracingSamplerAlways = "always"
	TracingSamplerNever  = "never"
	TracingSamplerRatio  = "ratio"
)

// DefaultRequestDurationBuckets spans fast errors up to the upstream timeout.
var DefaultRequestDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Proxy defaults
	if cfg.Proxy.ListenAddress == "" {
		cfg.Proxy.ListenAddress = DefaultListenAddress
	}
	if cfg.Proxy.ReadTimeout == 0 {
		cfg.Proxy.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Proxy.WriteTimeout == 0 {
		cfg.Proxy.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Proxy.IdleTimeout == 0 {
		cfg.Proxy.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Proxy.MaxHeaderBytes == 0 {
		cfg.Proxy.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Proxy.MaxBodyBytes == 0 {
		cfg.Proxy.MaxBodyBytes = DefaultMaxBodyBytes
	}

	// CORS defaults only matter once CORS is switched on
	if len(cfg.Proxy.CORS.AllowedMethods) == 0 {
		cfg.Proxy.CORS.AllowedMethods = []string{"POST", "OPTIONS"}
	}
	if len(cfg.Proxy.CORS.AllowedHeaders) == 0 {
		cfg.Proxy.CORS.AllowedHeaders = []string{"Content-Type", "X-Request-ID", DefaultFunctionKeyHeader}
	}
	if len(cfg.Proxy.CORS.ExposedHeaders) == 0 {
		cfg.Proxy.CORS.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cfg.Proxy.CORS.MaxAge == 0 {
		cfg.Proxy.CORS.MaxAge = DefaultCORSMaxAge
	}

	// Upstream defaults
	if cfg.Upstream.APIVersion == "" {
		cfg.Upstream.APIVersion = DefaultAPIVersion
	}
	if cfg.Upstream.V1APIVersion == "" {
		cfg.Upstream.V1APIVersion = DefaultV1APIVersion
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if cfg.Upstream.MaxResponseBytes == 0 {
		cfg.Upstream.MaxResponseBytes = DefaultUpstreamMaxResponseBytes
	}
	if cfg.Upstream.MaxIdleConns == 0 {
		cfg.Upstream.MaxIdleConns = DefaultUpstreamMaxIdleConns
	}
	if cfg.Upstream.IdleConnTimeout == 0 {
		cfg.Upstream.IdleConnTimeout = DefaultUpstreamIdleConnTimeout
	}

	// Credential defaults
	if cfg.Credential.Mode == "" {
		cfg.Credential.Mode = DefaultCredentialMode
	}
	if cfg.Credential.Scope == "" {
		cfg.Credential.Scope = DefaultCredentialScope
	}
	if cfg.Credential.RefreshMargin == 0 {
		cfg.Credential.RefreshMargin = DefaultCredentialRefreshMargin
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}

	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
		if cfg.Telemetry.Tracing.SampleRatio == 0 {
			cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
		}
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}

	// Security defaults
	if cfg.Security.TLS.ReloadInterval == 0 {
		cfg.Security.TLS.ReloadInterval = DefaultTLSReloadInterval
	}
	if cfg.Security.FunctionKeys.Header == "" {
		cfg.Security.FunctionKeys.Header = DefaultFunctionKeyHeader
	}
	if cfg.Security.FunctionKeys.QueryParam == "" {
		cfg.Security.FunctionKeys.QueryParam = DefaultFunctionKeyQueryParam
	}
}
