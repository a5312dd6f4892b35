package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tapilab/azure-openai-proxy/pkg/config"
)

// UpstreamMetrics tracks calls to the Azure OpenAI resource.
type UpstreamMetrics struct {
	latency *prometheus.HistogramVec
	errors  *prometheus.CounterVec
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_latency_seconds",
				Help:      "Latency of upstream calls that returned a response",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"route"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_errors_total",
				Help:      "Upstream calls that produced no response, by error type",
			},
			[]string{"route", "error_type"},
		),
	}

	registry.MustRegister(um.latency, um.errors)

	return um
}

// RecordLatency observes one upstream round trip.
func (um *UpstreamMetrics) RecordLatency(route string, latency time.Duration) {
	um.latency.WithLabelValues(route).Observe(latency.Seconds())
}

// RecordError counts one failed upstream call.
func (um *UpstreamMetrics) RecordError(route, errorType string) {
	um.errors.WithLabelValues(route, errorType).Inc()
}
