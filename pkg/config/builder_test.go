package config

import "time"

// ConfigBuilder assembles Config values for tests.
type ConfigBuilder struct {
	cfg *Config
}

// NewTestConfig returns a builder seeded with MinimalConfig.
func NewTestConfig() *ConfigBuilder {
	return &ConfigBuilder{cfg: MinimalConfig()}
}

func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Proxy.ListenAddress = addr
	return b
}

func (b *ConfigBuilder) WithUpstream(base, deployment string) *ConfigBuilder {
	b.cfg.Upstream.BaseURL = base
	b.cfg.Upstream.Deployment = deployment
	return b
}

func (b *ConfigBuilder) WithUpstreamTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Upstream.Timeout = d
	return b
}

func (b *ConfigBuilder) WithStaticToken(token string) *ConfigBuilder {
	b.cfg.Credential.Mode = CredentialModeStatic
	b.cfg.Credential.StaticToken = token
	return b
}

func (b *ConfigBuilder) WithTracing(sampler string, ratio float64) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = true
	b.cfg.Telemetry.Tracing.Sampler = sampler
	b.cfg.Telemetry.Tracing.SampleRatio = ratio
	return b
}

func (b *ConfigBuilder) WithRefreshSchedule(spec string) *ConfigBuilder {
	b.cfg.Credential.RefreshSchedule = spec
	return b
}

func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

func (b *ConfigBuilder) WithTLS(cert, key string) *ConfigBuilder {
	b.cfg.Security.TLS = TLSConfig{Enabled: true, CertFile: cert, KeyFile: key}
	return b
}

func (b *ConfigBuilder) WithFunctionKeys(keys ...string) *ConfigBuilder {
	b.cfg.Security.FunctionKeys.Enabled = true
	b.cfg.Security.FunctionKeys.Keys = keys
	return b
}

func (b *ConfigBuilder) Build() *Config {
	return b.cfg
}

// MinimalConfig returns the smallest valid configuration.
func MinimalConfig() *Config {
	cfg := &Config{
		Upstream: UpstreamConfig{
			BaseURL:    "https://example.openai.azure.com",
			Deployment: "gpt-4o",
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
