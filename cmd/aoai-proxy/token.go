package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/tapilab/azure-openai-proxy/pkg/cli"
	"github.com/tapilab/azure-openai-proxy/pkg/credential"
	"github.com/tapilab/azure-openai-proxy/pkg/telemetry/logging"
)

var tokenFlags struct {
	show    bool
	timeout time.Duration
	format  string
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Acquire a token with the configured credential",
	Long: `Acquire a bearer token for the Cognitive Services scope using the configured
credential source and print when it expires.

The token itself is masked unless --show is given.

Examples:
  # Check that managed identity or az login works
  aoai-proxy token

  # Print the raw token
  aoai-proxy token --show`,
	RunE: acquireToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().BoolVar(&tokenFlags.show, "show", false, "print the raw token")
	tokenCmd.Flags().DurationVar(&tokenFlags.timeout, "timeout", 30*time.Second, "acquisition timeout")
	tokenCmd.Flags().StringVarP(&tokenFlags.format, "output", "o", "text", "output format: text, json")
}

func acquireToken(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(tokenFlags.format))
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	provider, err := credential.NewProviderFromConfig(cfg.Credential, slog.Default(), nil)
	if err != nil {
		return cli.NewCommandError("token", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), tokenFlags.timeout)
	defer cancel()

	start := time.Now()
	tok, err := provider.GetToken(ctx)
	if err != nil {
		return cli.NewCommandError("token", err)
	}

	value := logging.RedactKey(tok.Value)
	if tokenFlags.show {
		value = tok.Value
	}

	return formatter.FormatTo(cmd.OutOrStdout(), cli.Summary{
		{Key: "source", Value: cfg.Credential.Mode},
		{Key: "scope", Value: cfg.Credential.Scope},
		{Key: "expires_on", Value: tok.ExpiresOn.UTC().Format(time.RFC3339)},
		{Key: "expires_in", Value: time.Until(tok.ExpiresOn).Round(time.Second).String()},
		{Key: "acquired_in", Value: fmt.Sprintf("%dms", time.Since(start).Milliseconds())},
		{Key: "token", Value: value},
	})
}
