package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tapilab/azure-openai-proxy/pkg/config"
)

// Collector is the single entry point for recording proxy metrics.
type Collector struct {
	config   config.MetricsConfig
	enabled  bool
	registry *prometheus.Registry

	requestMetrics    *RequestMetrics
	upstreamMetrics   *UpstreamMetrics
	credentialMetrics *CredentialMetrics
}

// NewCollector creates a collector registered on registry. If registry is
// nil, a fresh private registry with Go runtime and process collectors is
// created.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = config.DefaultRequestDurationBuckets
	}

	return &Collector{
		config:            cfg,
		enabled:           cfg.IsEnabled(),
		registry:          registry,
		requestMetrics:    NewRequestMetrics(&cfg, registry),
		upstreamMetrics:   NewUpstreamMetrics(&cfg, registry),
		credentialMetrics: NewCredentialMetrics(&cfg, registry),
	}
}

// Enabled reports whether recording is active.
func (c *Collector) Enabled() bool {
	return c != nil && c.enabled
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRequest records a completed inbound request.
//
// Parameters:
//   - route: proxy route name (e.g., "chat_completions")
//   - status: HTTP status returned to the caller
//   - duration: total handling time
func (c *Collector) RecordRequest(route string, status int, duration time.Duration) {
	if !c.Enabled() {
		return
	}
	c.requestMetrics.Record(route, status, duration)
}

// RecordUpstreamLatency records the time spent waiting on the upstream for
// a call that produced a response.
func (c *Collector) RecordUpstreamLatency(route string, latency time.Duration) {
	if !c.Enabled() {
		return
	}
	c.upstreamMetrics.RecordLatency(route, latency)
}

// RecordUpstreamError records a call that produced no upstream response.
//
// Parameters:
//   - errorType: "timeout", "transport", "canceled"
func (c *Collector) RecordUpstreamError(route, errorType string) {
	if !c.Enabled() {
		return
	}
	c.upstreamMetrics.RecordError(route, errorType)
}

// RecordTokenAcquisition records a call to the credential source.
func (c *Collector) RecordTokenAcquisition(source, result string, duration time.Duration) {
	if !c.Enabled() {
		return
	}
	c.credentialMetrics.RecordAcquisition(source, result, duration)
}

// RecordTokenCache records a token cache lookup.
func (c *Collector) RecordTokenCache(hit bool) {
	if !c.Enabled() {
		return
	}
	c.credentialMetrics.RecordCacheLookup(hit)
}

// SetTokenExpiry publishes the expiry of the current cached token.
func (c *Collector) SetTokenExpiry(expiresOn time.Time) {
	if !c.Enabled() {
		return
	}
	c.credentialMetrics.SetExpiry(expiresOn)
}
