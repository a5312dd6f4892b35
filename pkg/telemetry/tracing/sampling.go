package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tapilab/azure-openai-proxy/pkg/config"
)

// newSampler builds the root sampler for cfg. It is always parent-based:
// a caller's sampled traceparent is continued and an unsampled one is not,
// so the configured strategy only applies to traces that start here.
func newSampler(cfg config.TracingConfig) (sdktrace.Sampler, error) {
	var root sdktrace.Sampler

	switch cfg.Sampler {
	case config.TracingSamplerAlways:
		root = sdktrace.AlwaysSample()
	case config.TracingSamplerNever:
		root = sdktrace.NeverSample()
	case config.TracingSamplerRatio:
		if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
			return nil, fmt.Errorf("sample ratio %g outside [0, 1]", cfg.SampleRatio)
		}
		root = sdktrace.TraceIDRatioBased(cfg.SampleRatio)
	default:
		return nil, fmt.Errorf("unknown sampler %q", cfg.Sampler)
	}

	return sdktrace.ParentBased(root), nil
}
