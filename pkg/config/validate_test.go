package config

import (
	"errors"
	"strings"
	"testing"
)

func validMemoryConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Backend.Type = "memory"
	cfg.Resolver = ResolverConfig{Threshold: 120, LowOffset: 3, HighOffset: 7}
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:      "empty listen address",
			mutate:    func(c *Config) { c.Proxy.ListenAddress = "" },
			wantField: "proxy.listen_address",
		},
		{
			name:      "unknown backend type",
			mutate:    func(c *Config) { c.Backend.Type = "grpc" },
			wantField: "backend.type",
		},
		{
			name: "gateway with relative URL",
			mutate: func(c *Config) {
				c.Backend.Type = "gateway"
				c.Backend.BaseURL = "localhost"
				c.Backend.Source = "lectures"
			},
			wantField: "backend.base_url",
		},
		{
			name:      "heartbeat too short",
			mutate:    func(c *Config) { c.Session.HeartbeatInterval = 10 },
			wantField: "session.heartbeat_interval",
		},
		{
			name:      "high offset not above low offset",
			mutate:    func(c *Config) { c.Resolver.HighOffset = 3 },
			wantField: "resolver.high_offset",
		},
		{
			name:      "negative threshold",
			mutate:    func(c *Config) { c.Resolver.Threshold = -1 },
			wantField: "resolver.threshold",
		},
		{
			name:      "zero attempts",
			mutate:    func(c *Config) { c.Locator.MaxAttempts = 0 },
			wantField: "locator.max_attempts",
		},
		{
			name:      "unknown profile",
			mutate:    func(c *Config) { c.Transfer.Profile = "turbo" },
			wantField: "transfer.profile",
		},
		{
			name:      "unknown strategy",
			mutate:    func(c *Config) { c.Transfer.Strategy = "stream" },
			wantField: "transfer.strategy",
		},
		{
			name:      "unaligned chunk size",
			mutate:    func(c *Config) { c.Transfer.ChunkSize = 100000 },
			wantField: "transfer.chunk_size",
		},
		{
			name:      "aligned chunk size that does not divide 1MiB",
			mutate:    func(c *Config) { c.Transfer.ChunkSize = 400 * 1024 },
			wantField: "transfer.chunk_size",
		},
		{
			name:      "too many workers",
			mutate:    func(c *Config) { c.Transfer.Workers = 64 },
			wantField: "transfer.workers",
		},
		{
			name:      "unknown sqlite driver",
			mutate:    func(c *Config) { c.Ledger.SQLite.Driver = "pgx" },
			wantField: "ledger.sqlite.driver",
		},
		{
			name:      "bad cron schedule",
			mutate:    func(c *Config) { c.Ledger.Retention.PruneSchedule = "every day" },
			wantField: "ledger.retention.prune_schedule",
		},
		{
			name:      "bad log level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "verbose" },
			wantField: "telemetry.logging.level",
		},
		{
			name: "tracing without endpoint",
			mutate: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Endpoint = ""
			},
			wantField: "telemetry.tracing.endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validMemoryConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var validationErr ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			for _, fe := range validationErr.Errors {
				if fe.Field == tt.wantField {
					return
				}
			}
			t.Errorf("expected error for field %s, got %v", tt.wantField, validationErr.Errors)
		})
	}
}

func TestValidate_DisabledLedgerSkipsChecks(t *testing.T) {
	cfg := validMemoryConfig()
	cfg.Ledger.Enabled = false
	cfg.Ledger.Backend = "postgres"

	if err := Validate(cfg); err != nil {
		t.Errorf("expected disabled ledger to skip validation, got %v", err)
	}
}

func TestValidationError_Format(t *testing.T) {
	err := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}}

	msg := err.Error()
	if !strings.Contains(msg, "2 errors") {
		t.Errorf("expected error count in message, got %q", msg)
	}
	if !strings.Contains(msg, "a: bad") || !strings.Contains(msg, "b: worse") {
		t.Errorf("expected both field errors in message, got %q", msg)
	}
}
