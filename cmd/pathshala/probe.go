package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/cli"
	"github.com/Meijaisharma/PathshalaPro/pkg/ranges"
	"github.com/Meijaisharma/PathshalaPro/pkg/transfer"

	"github.com/spf13/cobra"
)

type probeOptions struct {
	rangeHeader string
	output      string
	quiet       bool
}

func newProbeCmd() *cobra.Command {
	opts := &probeOptions{}
	cmd := &cobra.Command{
		Use:   "probe <id>",
		Short: "Fetch a file through the relay pipeline without HTTP",
		Long: `Probe resolves a public content ID, locates the media on the backend and
streams it through the transfer engine exactly as a media request would.
The body is discarded unless --output is given.

Examples:
  # Check that a lecture is reachable and measure throughput
  pathshala probe 42

  # Fetch the first megabyte into a file
  pathshala probe 42 --range bytes=0-1048575 --output head.mp4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.rangeHeader, "range", "", "Range header value, e.g. bytes=0-1023")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the body to this file")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not show progress")
	return cmd
}

func runProbe(cmd *cobra.Command, rawID string, opts *probeOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := setupLogging(cfg); err != nil {
		return cli.NewConfigError("telemetry.logging", "invalid logging configuration", err)
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	rl, err := newRelay(cfg, nil, nil)
	if err != nil {
		return cli.NewCommandError("probe", err)
	}
	defer rl.Close()

	clientID, messageID, err := rl.resolver.ParseAndResolve(rawID)
	if err != nil {
		return cli.NewCommandError("probe", err)
	}
	media, err := rl.locator.Describe(ctx, messageID)
	if err != nil {
		return cli.NewCommandError("probe", err)
	}

	decision := ranges.Negotiate(opts.rangeHeader, media.Size, false)
	if err := decision.Err(); err != nil {
		return cli.NewCommandError("probe", fmt.Errorf("%w: file has %d bytes", err, media.Size))
	}

	var body io.Writer = io.Discard
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return cli.NewCommandError("probe", err)
		}
		defer f.Close()
		body = f
	}

	status := cmd.ErrOrStderr()
	fmt.Fprintf(status, "client %d -> message %d, %s, %s\n",
		clientID, messageID, media.MimeType, cli.FormatBytes(media.Size))

	var progress cli.ProgressReporter
	if !opts.quiet {
		progress = cli.NewProgressReporter(status)
		progress.Start(decision.Length)
	}

	client, err := rl.supervisor.Client(ctx)
	if err != nil {
		return cli.NewCommandError("probe", err)
	}

	engine := transfer.NewEngine(transfer.OptionsFromConfig(cfg.Transfer))
	w := cli.NewProgressWriter(body, progress)
	res, err := engine.Transfer(ctx, client, media, decision.Start, decision.Length, engine.NewSink(w, decision.Status))
	if err != nil {
		if progress != nil {
			progress.Error(err)
		}
		return cli.NewCommandError("probe", err)
	}
	if progress != nil {
		progress.Finish()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d %s bytes=%d strategy=%s outcome=%s duration=%s\n",
		w.Status(), http.StatusText(w.Status()), res.BytesWritten, res.Strategy,
		res.Outcome(nil), res.Duration.Round(time.Millisecond))
	if decision.Partial {
		fmt.Fprintln(cmd.OutOrStdout(), "Content-Range: "+ranges.ContentRange(decision.Start, decision.End, decision.Total))
	}
	if res.ClientGone {
		return cli.NewCommandError("probe", fmt.Errorf("interrupted after %d bytes", res.BytesWritten))
	}
	return nil
}
