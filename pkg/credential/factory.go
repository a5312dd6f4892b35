package credential

import (
	"fmt"
	"log/slog"

	"github.com/tapilab/azure-openai-proxy/pkg/config"
)

// NewSource builds the Source selected by cfg.Mode.
func NewSource(cfg config.CredentialConfig) (Source, error) {
	switch cfg.Mode {
	case config.CredentialModeAzure, "":
		return NewAzureSource(cfg.TenantID)
	case config.CredentialModeStatic:
		return NewStaticSource(cfg.StaticToken), nil
	default:
		return nil, fmt.Errorf("unknown credential mode %q", cfg.Mode)
	}
}

// NewProviderFromConfig builds a CachingProvider over the configured source.
func NewProviderFromConfig(cfg config.CredentialConfig, logger *slog.Logger, observer Observer) (*CachingProvider, error) {
	src, err := NewSource(cfg)
	if err != nil {
		return nil, err
	}

	name := cfg.Mode
	if name == "" {
		name = config.CredentialModeAzure
	}

	return NewCachingProvider(CachingProviderConfig{
		Source:        src,
		SourceName:    name,
		Scope:         cfg.Scope,
		RefreshMargin: cfg.RefreshMargin,
		Logger:        logger,
		Observer:      observer,
	})
}
