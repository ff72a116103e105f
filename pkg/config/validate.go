package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "proxy.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateBackend(&cfg.Backend)...)
	errs = append(errs, validateSession(&cfg.Session)...)
	errs = append(errs, validateResolver(&cfg.Resolver)...)
	errs = append(errs, validateLocator(&cfg.Locator)...)
	errs = append(errs, validateTransfer(&cfg.Transfer)...)
	errs = append(errs, validateLedger(&cfg.Ledger)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateProxy validates proxy configuration.
func validateProxy(cfg *ProxyConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "proxy.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.write_timeout",
			Message: "write timeout must be non-negative",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 {
		errs = append(errs, FieldError{
			Field:   "proxy.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	return errs
}

// validateBackend validates backend configuration.
func validateBackend(cfg *BackendConfig) []FieldError {
	var errs []FieldError

	switch cfg.Type {
	case "gateway":
		if cfg.BaseURL == "" {
			errs = append(errs, FieldError{
				Field:   "backend.base_url",
				Message: "base URL is required when type is 'gateway'",
			})
		} else if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "backend.base_url",
				Message: fmt.Sprintf("invalid URL %q", cfg.BaseURL),
			})
		}
		if cfg.Source == "" {
			errs = append(errs, FieldError{
				Field:   "backend.source",
				Message: "content source is required",
			})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "backend.type",
			Message: fmt.Sprintf("invalid type %q: must be 'gateway' or 'memory'", cfg.Type),
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "backend.timeout",
			Message: "timeout must be positive",
		})
	}

	return errs
}

// validateSession validates Connection Supervisor settings.
func validateSession(cfg *SessionConfig) []FieldError {
	var errs []FieldError

	if cfg.HeartbeatInterval < time.Second {
		errs = append(errs, FieldError{
			Field:   "session.heartbeat_interval",
			Message: "heartbeat interval must be at least 1s",
		})
	}
	if cfg.ConnectTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "session.connect_timeout",
			Message: "connect timeout must be positive",
		})
	}

	return errs
}

// validateResolver checks that the offset function stays strictly increasing.
func validateResolver(cfg *ResolverConfig) []FieldError {
	var errs []FieldError

	if cfg.Threshold < 0 {
		errs = append(errs, FieldError{
			Field:   "resolver.threshold",
			Message: "threshold must be non-negative",
		})
	}
	if cfg.LowOffset < 0 {
		errs = append(errs, FieldError{
			Field:   "resolver.low_offset",
			Message: "low offset must be non-negative",
		})
	}
	if cfg.HighOffset <= cfg.LowOffset && (cfg.HighOffset != 0 || cfg.LowOffset != 0) {
		errs = append(errs, FieldError{
			Field:   "resolver.high_offset",
			Message: "high offset must be greater than low offset",
		})
	}

	return errs
}

// validateLocator validates the retry policy.
func validateLocator(cfg *LocatorConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxAttempts < 1 || cfg.MaxAttempts > 10 {
		errs = append(errs, FieldError{
			Field:   "locator.max_attempts",
			Message: "max attempts must be between 1 and 10",
		})
	}
	if cfg.RetryDelay < 0 {
		errs = append(errs, FieldError{
			Field:   "locator.retry_delay",
			Message: "retry delay must be non-negative",
		})
	}

	return errs
}

// validateTransfer validates transfer tuning.
func validateTransfer(cfg *TransferConfig) []FieldError {
	var errs []FieldError

	if _, ok := transferProfiles[cfg.Profile]; !ok {
		errs = append(errs, FieldError{
			Field:   "transfer.profile",
			Message: fmt.Sprintf("invalid profile %q: must be 'fast_start', 'balanced', or 'throughput'", cfg.Profile),
		})
	}
	if cfg.Strategy != StrategyChunked && cfg.Strategy != StrategyBulk {
		errs = append(errs, FieldError{
			Field:   "transfer.strategy",
			Message: fmt.Sprintf("invalid strategy %q: must be 'chunked' or 'bulk'", cfg.Strategy),
		})
	}
	// Backend parts are 4 KiB aligned and must not cross a 1 MiB boundary,
	// which leaves the powers of two from 4 KiB to 1 MiB.
	if cfg.ChunkSize < 4096 || cfg.ChunkSize > 1024*1024 || (1024*1024)%cfg.ChunkSize != 0 {
		errs = append(errs, FieldError{
			Field:   "transfer.chunk_size",
			Message: "chunk size must be a power of two between 4KiB and 1MiB",
		})
	}
	if cfg.Workers < 1 || cfg.Workers > 16 {
		errs = append(errs, FieldError{
			Field:   "transfer.workers",
			Message: "workers must be between 1 and 16",
		})
	}
	if cfg.StallTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "transfer.stall_timeout",
			Message: "stall timeout must be non-negative",
		})
	}

	return errs
}

// validateLedger validates ledger configuration.
func validateLedger(cfg *LedgerConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	switch cfg.Backend {
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "ledger.sqlite.path",
				Message: "SQLite path is required when backend is 'sqlite'",
			})
		}
		if cfg.SQLite.Driver != "sqlite" && cfg.SQLite.Driver != "sqlite3" {
			errs = append(errs, FieldError{
				Field:   "ledger.sqlite.driver",
				Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.SQLite.Driver),
			})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "ledger.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite' or 'memory'", cfg.Backend),
		})
	}

	if cfg.Recorder.AsyncBuffer < 0 {
		errs = append(errs, FieldError{
			Field:   "ledger.recorder.async_buffer",
			Message: "async buffer must be non-negative",
		})
	}
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "ledger.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "ledger.retention.max_records",
			Message: "max records must be non-negative",
		})
	}
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "ledger.retention.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/'",
		})
	}

	if cfg.Tracing.Enabled {
		validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
		if !validSamplers[cfg.Tracing.Sampler] {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: "sample ratio must be between 0.0 and 1.0",
			})
		}
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
	}

	return errs
}
