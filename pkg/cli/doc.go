/*
Package cli provides the helpers shared by the pathshala subcommands.

Output Formatting:

Results print as aligned text or JSON:

	table := &cli.Table{Headers: []string{"client_id", "message_id"}}
	table.AddRow("5", "8")
	if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, table); err != nil {
		return err
	}

Progress Reporting:

ProgressWriter is an http.ResponseWriter, so a transfer can be run from
the command line and reported as it goes:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(media.Size)
	w := cli.NewProgressWriter(io.Discard, progress)
	res, err := engine.Transfer(ctx, client, media, 0, media.Size, engine.NewSink(w, http.StatusOK))
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

SIGHUP triggers a configuration reload in the run command:

	for range cli.ReloadSignals(ctx) {
		reload()
	}

Errors:

Commands return *ConfigError for bad configuration and *CommandError for
runtime failures; ExitCode maps them to the process exit status.
*/
package cli
