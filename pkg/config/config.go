package config

import "time"

// Config is the root configuration structure for the Azure OpenAI proxy.
// It contains all configuration sections for the HTTP server, the upstream
// inference API, credential acquisition, telemetry, and security settings.
type Config struct {
	// Proxy contains HTTP server configuration including listen address,
	// timeouts, and body limits.
	Proxy ProxyConfig `yaml:"proxy"`

	// Upstream describes the Azure OpenAI resource requests are forwarded to.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Credential controls how bearer tokens for the upstream are obtained
	// and cached.
	Credential CredentialConfig `yaml:"credential"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Security contains TLS and function key settings.
	Security SecurityConfig `yaml:"security"`
}

// ProxyConfig contains configuration for the HTTP proxy server.
type ProxyConfig struct {
	// ListenAddress is the address and port for the proxy to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must leave room for the upstream timeout.
	// Default: 90s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes is the largest request body accepted for forwarding.
	// Default: 10485760 (10MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Use ["*"] to allow all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Content-Type", "X-Request-ID", "x-functions-key"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed in CORS requests.
	AllowCredentials bool `yaml:"allow_credentials"`
}

// UpstreamConfig describes the Azure OpenAI resource.
type UpstreamConfig struct {
	// BaseURL is the resource endpoint, e.g. "https://myres.openai.azure.com".
	// A trailing slash is ignored.
	// Env: AZURE_OPENAI_BASE. Required.
	BaseURL string `yaml:"base_url"`

	// Deployment is the model deployment used by the chat completions route.
	// Env: AZURE_OPENAI_DEPLOYMENT. Required.
	Deployment string `yaml:"deployment"`

	// APIVersion is the api-version sent on the chat completions route.
	// Env: AZURE_OPENAI_API_VERSION. Default: "2024-05-01-preview"
	APIVersion string `yaml:"api_version"`

	// V1APIVersion is the api-version sent on the responses route.
	// Env: AZURE_OPENAI_V1_API_VERSION. Default: "preview"
	V1APIVersion string `yaml:"v1_api_version"`

	// Timeout bounds a single upstream call end to end.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxResponseBytes caps how much of an upstream body is read.
	// Default: 67108864 (64MB)
	MaxResponseBytes int64 `yaml:"max_response_bytes"`

	// MaxIdleConns is the idle connection pool size of the upstream client.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// IdleConnTimeout is how long idle upstream connections are kept.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// CredentialConfig controls bearer token acquisition.
type CredentialConfig struct {
	// Mode selects the token source.
	// Options: "azure" (DefaultAzureCredential chain), "static"
	// Default: "azure"
	Mode string `yaml:"mode"`

	// Scope is the token audience.
	// Default: "https://cognitiveservices.azure.com/.default"
	Scope string `yaml:"scope"`

	// TenantID optionally pins the tenant used by the credential chain.
	TenantID string `yaml:"tenant_id"`

	// StaticToken is the token served in "static" mode.
	// Env: AOAI_PROXY_CREDENTIAL_STATIC_TOKEN
	StaticToken string `yaml:"static_token"`

	// RefreshMargin is how long before expiry a cached token is replaced.
	// Default: 5m
	RefreshMargin time.Duration `yaml:"refresh_margin"`

	// RefreshSchedule is an optional cron spec for background pre-warming
	// of the token cache (e.g. "@every 5m"). Empty disables it.
	RefreshSchedule string `yaml:"refresh_schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks bearer tokens and keys in log attributes.
	// Default: true
	RedactSecrets *bool `yaml:"redact_secrets"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether the Prometheus endpoint is served.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "aoai"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "proxy"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets defines histogram buckets for request duration (seconds).
	// Default: [0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of new traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio". Incoming sampled traces are
	// always continued.
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "aoai-proxy"
	ServiceName string `yaml:"service_name"`
}

// IsEnabled reports whether metrics are enabled, treating unset as true.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// ShouldRedact reports whether secret redaction is on, treating unset as true.
func (l LoggingConfig) ShouldRedact() bool {
	return l.RedactSecrets == nil || *l.RedactSecrets
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// TLS contains TLS configuration for the proxy server.
	TLS TLSConfig `yaml:"tls"`

	// FunctionKeys gates the proxy routes behind shared keys.
	FunctionKeys FunctionKeysConfig `yaml:"function_keys"`
}

// TLSConfig contains TLS configuration.
type TLSConfig struct {
	// Enabled controls whether TLS is enabled for the proxy server.
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the TLS certificate file.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the TLS private key file.
	KeyFile string `yaml:"key_file"`

	// ReloadInterval is how often the key pair is checked for renewal on
	// disk. A negative value loads it once.
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// FunctionKeysConfig configures function-level key authorization for the
// proxy routes.
type FunctionKeysConfig struct {
	// Enabled turns key checking on.
	Enabled bool `yaml:"enabled"`

	// Keys is the set of accepted keys.
	// Env: AOAI_PROXY_FUNCTION_KEYS (comma-separated)
	Keys []string `yaml:"keys"`

	// Header is the request header carrying the key.
	// Default: "x-functions-key"
	Header string `yaml:"header"`

	// QueryParam is the query parameter carrying the key.
	// Default: "code"
	QueryParam string `yaml:"query_param"`
}
