package main

import (
	"fmt"
	"log/slog"

	"github.com/Meijaisharma/PathshalaPro/pkg/backend"
	"github.com/Meijaisharma/PathshalaPro/pkg/backend/gateway"
	"github.com/Meijaisharma/PathshalaPro/pkg/backend/memory"
	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/locator"
	"github.com/Meijaisharma/PathshalaPro/pkg/resolver"
	"github.com/Meijaisharma/PathshalaPro/pkg/retry"
	"github.com/Meijaisharma/PathshalaPro/pkg/session"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/logging"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/metrics"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/tracing"
)

// setupLogging installs the configured logger as the slog default.
// --verbose forces debug level.
func setupLogging(cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.New(cfg.Telemetry.Logging, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevel("debug")
	}
	logger.SetDefault()
	return logger, nil
}

// newBackend creates the backend client selected by backend.type.
func newBackend(cfg *config.Config) (backend.Client, error) {
	switch cfg.Backend.Type {
	case "gateway":
		return gateway.New(gateway.Config{
			BaseURL:      cfg.Backend.BaseURL,
			SessionToken: cfg.Backend.SessionToken,
			Timeout:      cfg.Backend.Timeout,
			MaxIdleConns: cfg.Backend.MaxIdleConns,
		}), nil
	case "memory":
		mem := memory.New()
		if dir := cfg.Backend.FixturesDir; dir != "" {
			n, err := mem.LoadDir(cfg.Backend.Source, dir)
			if err != nil {
				return nil, err
			}
			slog.Info("loaded memory backend fixtures", "dir", dir, "files", n)
		}
		return mem, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Backend.Type)
	}
}

// newResolver builds the identifier resolver from configuration.
func newResolver(cfg *config.Config) (*resolver.Resolver, error) {
	rc := cfg.Resolver
	return resolver.New(rc.Threshold, rc.LowOffset, rc.HighOffset)
}

// relay bundles the components between the backend and the HTTP layer.
type relay struct {
	client     backend.Client
	supervisor *session.Supervisor
	resolver   *resolver.Resolver
	locator    *locator.Locator
}

func newRelay(cfg *config.Config, collector *metrics.Collector, tracer *tracing.Tracer) (*relay, error) {
	client, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}
	res, err := newResolver(cfg)
	if err != nil {
		client.Close()
		return nil, err
	}

	sup := session.NewSupervisor(client, session.Config{
		HeartbeatInterval: cfg.Session.HeartbeatInterval,
		ConnectTimeout:    cfg.Session.ConnectTimeout,
	}, session.WithMetrics(collector))

	loc := locator.New(sup, cfg.Backend.Source, retry.Policy{
		MaxAttempts: cfg.Locator.MaxAttempts,
		Delay:       cfg.Locator.RetryDelay,
	}, locator.WithMetrics(collector), locator.WithTracer(tracer))

	return &relay{
		client:     client,
		supervisor: sup,
		resolver:   res,
		locator:    loc,
	}, nil
}

// Close stops the supervisor and releases the backend session.
func (r *relay) Close() error {
	r.supervisor.Stop()
	return r.client.Close()
}
