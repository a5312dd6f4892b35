package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by the upstream section. These keep the names
// used by existing Azure Functions deployments of the proxy.
const (
	EnvBase         = "AZURE_OPENAI_BASE"
	EnvDeployment   = "AZURE_OPENAI_DEPLOYMENT"
	EnvAPIVersion   = "AZURE_OPENAI_API_VERSION"
	EnvV1APIVersion = "AZURE_OPENAI_V1_API_VERSION"
)

// EnvPrefix prefixes every other environment override (AOAI_PROXY_SECTION_FIELD).
const EnvPrefix = "AOAI_PROXY_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. An empty path skips the file entirely, so
// the proxy can be configured from the environment alone.
//
// The loading sequence is:
// 1. Load YAML from file (if any)
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// readConfig parses the file at path (when non-empty) and applies defaults.
func readConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Upstream
	if val := os.Getenv(EnvBase); val != "" {
		cfg.Upstream.BaseURL = val
	}
	if val := os.Getenv(EnvDeployment); val != "" {
		cfg.Upstream.Deployment = val
	}
	if val := os.Getenv(EnvAPIVersion); val != "" {
		cfg.Upstream.APIVersion = val
	}
	if val := os.Getenv(EnvV1APIVersion); val != "" {
		cfg.Upstream.V1APIVersion = val
	}
	if val := os.Getenv(EnvPrefix + "UPSTREAM_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Upstream.Timeout = d
		}
	}

	// Proxy
	if val := os.Getenv(EnvPrefix + "PROXY_LISTEN_ADDRESS"); val != "" {
		cfg.Proxy.ListenAddress = val
	}
	if val := os.Getenv(EnvPrefix + "PROXY_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Proxy.ReadTimeout = d
		}
	}
	if val := os.Getenv(EnvPrefix + "PROXY_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Proxy.WriteTimeout = d
		}
	}
	if val := os.Getenv(EnvPrefix + "PROXY_MAX_BODY_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Proxy.MaxBodyBytes = i
		}
	}

	// Credential
	if val := os.Getenv(EnvPrefix + "CREDENTIAL_MODE"); val != "" {
		cfg.Credential.Mode = val
	}
	if val := os.Getenv(EnvPrefix + "CREDENTIAL_TENANT_ID"); val != "" {
		cfg.Credential.TenantID = val
	}
	if val := os.Getenv(EnvPrefix + "CREDENTIAL_STATIC_TOKEN"); val != "" {
		cfg.Credential.StaticToken = val
	}
	if val := os.Getenv(EnvPrefix + "CREDENTIAL_REFRESH_MARGIN"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Credential.RefreshMargin = d
		}
	}
	if val := os.Getenv(EnvPrefix + "CREDENTIAL_REFRESH_SCHEDULE"); val != "" {
		cfg.Credential.RefreshSchedule = val
	}

	// Telemetry
	if val := os.Getenv(EnvPrefix + "TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv(EnvPrefix + "TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv(EnvPrefix + "TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = &b
		}
	}

	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.Sampler = TracingSamplerRatio
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}

	// Security
	if val := os.Getenv(EnvPrefix + "SECURITY_TLS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Security.TLS.Enabled = b
		}
	}
	if val := os.Getenv(EnvPrefix + "SECURITY_TLS_CERT_FILE"); val != "" {
		cfg.Security.TLS.CertFile = val
	}
	if val := os.Getenv(EnvPrefix + "SECURITY_TLS_KEY_FILE"); val != "" {
		cfg.Security.TLS.KeyFile = val
	}
	if val := os.Getenv(EnvPrefix + "FUNCTION_KEYS"); val != "" {
		cfg.Security.FunctionKeys.Keys = splitList(val)
		cfg.Security.FunctionKeys.Enabled = len(cfg.Security.FunctionKeys.Keys) > 0
	}
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
