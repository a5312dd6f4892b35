package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tapilab/azure-openai-proxy/pkg/cli"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"
	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including Git commit and build date.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return (&cli.TextFormatter{}).FormatTo(cmd.OutOrStdout(), versionSummary())
	},
}

func versionSummary() cli.Summary {
	return cli.Summary{
		{Key: "aoai-proxy", Value: Version},
		{Key: "Git Commit", Value: GitCommit},
		{Key: "Build Date", Value: BuildDate},
		{Key: "Go Version", Value: runtime.Version()},
		{Key: "OS/Arch", Value: runtime.GOOS + "/" + runtime.GOARCH},
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
