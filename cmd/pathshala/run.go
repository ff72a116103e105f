package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Meijaisharma/PathshalaPro/pkg/cli"
	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger/recorder"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger/retention"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger/storage"
	"github.com/Meijaisharma/PathshalaPro/pkg/proxy/handlers"
	"github.com/Meijaisharma/PathshalaPro/pkg/server"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/health"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/logging"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/metrics"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/tracing"
	"github.com/Meijaisharma/PathshalaPro/pkg/transfer"

	"github.com/spf13/cobra"
)

type runOptions struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the media relay",
		Long: `Start the media relay with the specified configuration.

The relay connects to the backend, starts the heartbeat, opens the playback
ledger and serves the media API until SIGINT or SIGTERM. SIGHUP and edits to
the config file reload the log level and transfer tuning.

Examples:
  # Start with default config
  pathshala run

  # Start with custom config
  pathshala run --config /etc/pathshala/config.yaml

  # Override listen address
  pathshala run --listen 0.0.0.0:8080

  # Validate config without starting the relay
  pathshala run --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.listenAddress, "listen", "l", "", "override listen address")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "validate config without starting the relay")
	cmd.Flags().BoolVar(&opts.watch, "watch", true, "reload hot settings when the config file changes")
	return cmd
}

func runServer(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Apply flag overrides
	if opts.listenAddress != "" {
		cfg.Proxy.ListenAddress = opts.listenAddress
	}
	if opts.logLevel != "" {
		cfg.Telemetry.Logging.Level = opts.logLevel
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", "invalid logging configuration", err)
	}

	out := cmd.OutOrStdout()
	if opts.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	fmt.Fprintf(out, "Pathshala v%s\n", Version)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", "failed to initialize tracing", err)
	}
	defer tracer.Shutdown(context.Background())

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	rl, err := newRelay(cfg, collector, tracer)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer rl.Close()

	rl.supervisor.Start(ctx)
	fmt.Fprintf(out, "✓ Backend %s (source %q)\n", cfg.Backend.Type, cfg.Backend.Source)

	engine := transfer.NewEngine(transfer.OptionsFromConfig(cfg.Transfer), transfer.WithTracer(tracer))

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("backend_session", rl.supervisor.HealthCheck)

	deps := server.Deps{
		Media: handlers.MediaDeps{
			Resolver: rl.resolver,
			Locator:  rl.locator,
			Sessions: rl.supervisor,
			Engine:   engine,
			Metrics:  collector,
		},
		Captions: rl.locator,
		Health:   checker,
		Metrics:  collector,
		Tracer:   tracer,
		Build:    server.BuildInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate},
	}

	if cfg.Ledger.Enabled {
		store, err := storage.New(&cfg.Ledger)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open ledger: %w", err))
		}
		defer store.Close()

		rec := recorder.New(store, cfg.Ledger.Recorder)
		defer rec.Close()
		deps.Media.Recorder = rec

		checker.RegisterCheck("ledger", func(ctx context.Context) error {
			_, err := store.Count(ctx, &ledger.Query{})
			return err
		})

		if schedule := cfg.Ledger.Retention.PruneSchedule; schedule != "" {
			sched := retention.NewScheduler(retention.NewPruner(store, cfg.Ledger.Retention), schedule)
			if err := sched.Start(ctx); err != nil {
				slog.Warn("failed to start ledger retention", "error", err)
			} else {
				defer sched.Stop()
				if next := sched.NextRun(); next != nil {
					slog.Debug("ledger retention scheduled", "next_run", next)
				}
			}
		}
		fmt.Fprintf(out, "✓ Playback ledger (%s)\n", cfg.Ledger.Backend)
	}

	if path := configPath(cmd); path != "" {
		reload := func(newCfg *config.Config) { applyHotReload(logger, engine, newCfg) }
		if opts.watch {
			go func() {
				if err := config.NewWatcher(path, reload).Watch(ctx); err != nil {
					slog.Warn("config watcher stopped", "error", err)
				}
			}()
		}
		go func() {
			for range cli.ReloadSignals(ctx) {
				if err := config.ReloadConfig(path); err != nil {
					slog.Error("config reload failed", "error", err)
					continue
				}
				slog.Info("config reloaded on SIGHUP", "path", path)
				reload(config.GetConfig())
			}
		}()
	}

	srv := server.NewServer(cfg, deps)
	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Proxy.ListenAddress)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Relay stopped")
	return nil
}

// applyHotReload applies the settings that may change without a restart.
func applyHotReload(logger *logging.Logger, engine *transfer.Engine, cfg *config.Config) {
	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	if err := logger.SetLevel(level); err != nil {
		slog.Warn("ignoring invalid log level from reloaded config", "level", level, "error", err)
	}

	opts := transfer.OptionsFromConfig(cfg.Transfer)
	engine.SetOptions(opts)
	slog.Info("applied reloaded settings",
		"log_level", level,
		"strategy", opts.Strategy,
		"chunk_size", opts.ChunkSize,
		"workers", opts.Workers,
	)
}
