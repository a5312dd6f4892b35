package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tapilab/azure-openai-proxy/pkg/cli"
	"github.com/tapilab/azure-openai-proxy/pkg/config"
	"github.com/tapilab/azure-openai-proxy/pkg/upstream"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration file and environment overrides, validate them,
and print the effective settings including the upstream URL of each route.

Secrets are never printed.

Examples:
  # Validate environment-only configuration
  aoai-proxy validate

  # Validate a file and print JSON
  aoai-proxy validate --config config.yaml --output json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.format, "output", "o", "text", "output format: text, json")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(validateFlags.format))
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	summary, err := configSummary(cfg)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	return formatter.FormatTo(cmd.OutOrStdout(), summary)
}

// configSummary lists the effective settings without secrets.
func configSummary(cfg *config.Config) (cli.Summary, error) {
	target := upstream.TargetFromConfig(cfg.Upstream)

	summary := cli.Summary{
		{Key: "status", Value: "valid"},
		{Key: "listen_address", Value: cfg.Proxy.ListenAddress},
		{Key: "upstream", Value: cfg.Upstream.BaseURL},
		{Key: "deployment", Value: cfg.Upstream.Deployment},
	}

	for _, route := range upstream.Routes() {
		u, err := upstream.BuildURL(target, route)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", route.Name, err)
		}
		summary = append(summary, cli.Field{Key: "route " + route.Path, Value: u})
	}

	summary = append(summary,
		cli.Field{Key: "credential_mode", Value: cfg.Credential.Mode},
		cli.Field{Key: "refresh_schedule", Value: orNone(cfg.Credential.RefreshSchedule)},
		cli.Field{Key: "function_keys", Value: len(cfg.Security.FunctionKeys.Keys)},
		cli.Field{Key: "tls", Value: cfg.Security.TLS.Enabled},
		cli.Field{Key: "metrics", Value: cfg.Telemetry.Metrics.IsEnabled()},
		cli.Field{Key: "tracing", Value: cfg.Telemetry.Tracing.Enabled},
		cli.Field{Key: "log_level", Value: cfg.Telemetry.Logging.Level},
	)
	return summary, nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
