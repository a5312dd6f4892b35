package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tapilab/azure-openai-proxy/pkg/cli"
	"github.com/tapilab/azure-openai-proxy/pkg/config"
	"github.com/tapilab/azure-openai-proxy/pkg/credential"
	"github.com/tapilab/azure-openai-proxy/pkg/server"
	"github.com/tapilab/azure-openai-proxy/pkg/telemetry/logging"
	"github.com/tapilab/azure-openai-proxy/pkg/telemetry/metrics"
	"github.com/tapilab/azure-openai-proxy/pkg/telemetry/tracing"
	"github.com/tapilab/azure-openai-proxy/pkg/upstream"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the proxy server",
	Long: `Start the proxy server with the specified configuration.

The server listens on the configured address and forwards requests for
/v1/chat/completions and /v1/responses to the Azure OpenAI resource.

Examples:
  # Start from environment variables
  aoai-proxy run

  # Start with custom config
  aoai-proxy run --config /etc/aoai-proxy/config.yaml

  # Override listen address
  aoai-proxy run --listen 0.0.0.0:8080

  # Reload upstream settings when the config file changes
  aoai-proxy run --config config.yaml --watch

  # Validate config without starting server
  aoai-proxy run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload upstream settings when the config file changes")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Proxy.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.NewFromConfig(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	slog.SetDefault(logger.Slog())

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	tracer, err := tracing.New(cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Telemetry.Tracing.Timeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.IsEnabled() {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics, nil)
	}

	var observer credential.Observer
	if collector != nil {
		observer = collector
	}
	provider, err := credential.NewProviderFromConfig(cfg.Credential, logger.Slog(), observer)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to create credential provider: %w", err))
	}

	if cfg.Credential.RefreshSchedule != "" {
		refresher, err := credential.NewRefresher(provider, cfg.Credential.RefreshSchedule, logger.Slog())
		if err != nil {
			return cli.NewConfigError(cfgFile, err)
		}
		if err := refresher.Start(ctx); err != nil {
			return cli.NewCommandError("run", err)
		}
		defer refresher.Stop()
		slog.Debug("token refresher scheduled", "next_run", refresher.NextRun())
	}

	targets := upstream.NewTargetStore(upstream.TargetFromConfig(cfg.Upstream))
	opts := upstream.OptionsFromConfig(cfg.Upstream)
	if collector != nil {
		opts.Metrics = collector
	}
	forwarder := upstream.NewForwarder(targets, opts)

	if runFlags.watch {
		if cfgFile == "" {
			slog.Warn("--watch has no effect without --config")
		} else {
			watcher, err := config.NewWatcher(cfgFile, logger.Slog(), func(next *config.Config) {
				targets.Store(upstream.TargetFromConfig(next.Upstream))
				slog.Info("upstream target updated",
					"base_url", next.Upstream.BaseURL,
					"deployment", next.Upstream.Deployment,
				)
			})
			if err != nil {
				return cli.NewCommandError("run", err)
			}
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					slog.Error("config watcher exited", "error", err)
				}
			}()
		}
	}

	printBanner(cmd, cfg)

	srv := server.NewServer(cfg, server.Dependencies{
		Credentials: provider,
		Forwarder:   forwarder,
		Metrics:     collector,
	})

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "aoai-proxy v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(out, "Configuration: %s\n", cfgFile)
	}
	fmt.Fprintf(out, "✓ Upstream %s (deployment %s)\n", cfg.Upstream.BaseURL, cfg.Upstream.Deployment)
	fmt.Fprintf(out, "✓ Credential mode: %s\n", cfg.Credential.Mode)
	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Proxy.ListenAddress)
	if cfg.Telemetry.Metrics.IsEnabled() {
		fmt.Fprintf(out, "✓ Metrics endpoint: %s\n", cfg.Telemetry.Metrics.Path)
	}
	if cfg.Telemetry.Tracing.Enabled {
		fmt.Fprintf(out, "✓ Tracing to %s\n", cfg.Telemetry.Tracing.Endpoint)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")
}
