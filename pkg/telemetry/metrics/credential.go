package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tapilab/azure-openai-proxy/pkg/config"
)

// CredentialMetrics tracks token acquisition and caching.
type CredentialMetrics struct {
	acquisitions        *prometheus.CounterVec
	acquisitionDuration *prometheus.HistogramVec
	cacheLookups        *prometheus.CounterVec
	expiry              prometheus.Gauge
}

// NewCredentialMetrics creates and registers credential metrics with the provided registry.
func NewCredentialMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CredentialMetrics {
	cm := &CredentialMetrics{
		acquisitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "token_acquisitions_total",
				Help:      "Token fetches from the credential source by result",
			},
			[]string{"source", "result"},
		),

		acquisitionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "token_acquisition_duration_seconds",
				Help:      "Time spent fetching tokens from the credential source",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"source"},
		),

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "token_cache_lookups_total",
				Help:      "Token cache lookups by result (hit, miss)",
			},
			[]string{"result"},
		),

		expiry: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "token_expiry_timestamp_seconds",
				Help:      "Unix time at which the cached token expires",
			},
		),
	}

	registry.MustRegister(cm.acquisitions, cm.acquisitionDuration, cm.cacheLookups, cm.expiry)

	return cm
}

// RecordAcquisition records one source fetch.
func (cm *CredentialMetrics) RecordAcquisition(source, result string, duration time.Duration) {
	cm.acquisitions.WithLabelValues(source, result).Inc()
	cm.acquisitionDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func (cm *CredentialMetrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cm.cacheLookups.WithLabelValues(result).Inc()
}

// SetExpiry publishes the cached token's expiry.
func (cm *CredentialMetrics) SetExpiry(expiresOn time.Time) {
	cm.expiry.Set(float64(expiresOn.Unix()))
}
