package main

import (
	"github.com/tapilab/azure-openai-proxy/pkg/cli"
	"github.com/tapilab/azure-openai-proxy/pkg/config"
)

// loadConfig loads the configuration file (if any) with environment
// overrides and publishes it as the process-wide configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	config.SetConfig(cfg)
	return cfg, nil
}
