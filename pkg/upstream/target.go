package upstream

import (
	"sync/atomic"

	"github.com/tapilab/azure-openai-proxy/pkg/config"
)

// Target is an immutable snapshot of the upstream resource settings.
type Target struct {
	BaseURL      string
	Deployment   string
	APIVersion   string
	V1APIVersion string
}

// TargetFromConfig extracts a Target from the upstream config section.
func TargetFromConfig(cfg config.UpstreamConfig) Target {
	return Target{
		BaseURL:      cfg.BaseURL,
		Deployment:   cfg.Deployment,
		APIVersion:   cfg.APIVersion,
		V1APIVersion: cfg.V1APIVersion,
	}
}

// TargetStore holds the current Target and allows it to be swapped while
// requests are in flight. Each request reads one snapshot.
type TargetStore struct {
	current atomic.Pointer[Target]
}

// NewTargetStore creates a store holding t.
func NewTargetStore(t Target) *TargetStore {
	s := &TargetStore{}
	s.Store(t)
	return s
}

// Load returns the current snapshot.
func (s *TargetStore) Load() Target {
	return *s.current.Load()
}

// Store replaces the snapshot.
func (s *TargetStore) Store(t Target) {
	s.current.Store(&t)
}
