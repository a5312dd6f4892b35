package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tapilab/azure-openai-proxy/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "aoai-proxy",
	Short: "Authenticating reverse proxy for Azure OpenAI",
	Long: `aoai-proxy forwards OpenAI-style chat completions and responses requests to an
Azure OpenAI resource, authenticating each call with an Entra ID bearer token.

Request bodies are forwarded unmodified and upstream responses are relayed
verbatim, including error statuses. Configuration comes from an optional YAML
file and the environment:

  AZURE_OPENAI_BASE            resource endpoint (required)
  AZURE_OPENAI_DEPLOYMENT      deployment name (required)
  AZURE_OPENAI_API_VERSION     api-version for deployment routes
  AZURE_OPENAI_V1_API_VERSION  api-version for v1 routes
  AOAI_PROXY_*                 overrides for every other setting`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a code derived from the error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (optional; environment alone is enough)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
