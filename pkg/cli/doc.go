/*
Package cli provides command-line helpers shared by the aoai-proxy commands.

Output Formatting:

Commands report results as a Summary, an ordered list of key/value fields,
rendered as aligned text or as a JSON object:

	summary := cli.Summary{
		{Key: "upstream", Value: cfg.Upstream.BaseURL},
		{Key: "deployment", Value: cfg.Upstream.Deployment},
	}
	formatter, err := cli.NewFormatter(cli.FormatJSON)
	if err != nil {
		return err
	}
	return formatter.FormatTo(os.Stdout, summary)

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Exit Codes:

ExitCode maps command errors to process exit codes: 0 on success, 2 for
configuration problems and 1 for everything else.
*/
package cli
