package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for all environment variable overrides.
const EnvPrefix = "PATHSHALA_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of the defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	// Fields explicitly zeroed in YAML fall back to defaults again.
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention PATHSHALA_SECTION_FIELD (e.g., PATHSHALA_BACKEND_SESSION_TOKEN).
// PORT is also honoured and replaces the port of proxy.listen_address.
//
// The loading sequence is:
// 1. Load YAML from file (or defaults when path is empty)
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefaultConfig()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Proxy overrides
	envString(&cfg.Proxy.ListenAddress, "PROXY_LISTEN_ADDRESS")
	envDuration(&cfg.Proxy.ReadTimeout, "PROXY_READ_TIMEOUT")
	envDuration(&cfg.Proxy.WriteTimeout, "PROXY_WRITE_TIMEOUT")
	envDuration(&cfg.Proxy.IdleTimeout, "PROXY_IDLE_TIMEOUT")
	envDuration(&cfg.Proxy.ShutdownTimeout, "PROXY_SHUTDOWN_TIMEOUT")
	envInt(&cfg.Proxy.MaxHeaderBytes, "PROXY_MAX_HEADER_BYTES")
	envString(&cfg.Proxy.ReferrerPolicy, "PROXY_REFERRER_POLICY")
	envString(&cfg.Proxy.StaticDir, "PROXY_STATIC_DIR")
	envBool(&cfg.Proxy.CORS.Enabled, "PROXY_CORS_ENABLED")
	if port := os.Getenv("PORT"); port != "" {
		cfg.Proxy.ListenAddress = withPort(cfg.Proxy.ListenAddress, port)
	}

	// Backend overrides
	envString(&cfg.Backend.Type, "BACKEND_TYPE")
	envString(&cfg.Backend.BaseURL, "BACKEND_BASE_URL")
	envString(&cfg.Backend.SessionToken, "BACKEND_SESSION_TOKEN")
	envString(&cfg.Backend.Source, "BACKEND_SOURCE")
	envDuration(&cfg.Backend.Timeout, "BACKEND_TIMEOUT")

	// Session overrides
	envDuration(&cfg.Session.HeartbeatInterval, "SESSION_HEARTBEAT_INTERVAL")
	envDuration(&cfg.Session.ConnectTimeout, "SESSION_CONNECT_TIMEOUT")

	// Resolver overrides
	envInt64(&cfg.Resolver.Threshold, "RESOLVER_THRESHOLD")
	envInt64(&cfg.Resolver.LowOffset, "RESOLVER_LOW_OFFSET")
	envInt64(&cfg.Resolver.HighOffset, "RESOLVER_HIGH_OFFSET")

	// Locator overrides
	envInt(&cfg.Locator.MaxAttempts, "LOCATOR_MAX_ATTEMPTS")
	envDuration(&cfg.Locator.RetryDelay, "LOCATOR_RETRY_DELAY")

	// Transfer overrides
	envString(&cfg.Transfer.Profile, "TRANSFER_PROFILE")
	envString(&cfg.Transfer.Strategy, "TRANSFER_STRATEGY")
	envInt64(&cfg.Transfer.ChunkSize, "TRANSFER_CHUNK_SIZE")
	envInt(&cfg.Transfer.Workers, "TRANSFER_WORKERS")
	envDuration(&cfg.Transfer.StallTimeout, "TRANSFER_STALL_TIMEOUT")

	// Ledger overrides
	envBool(&cfg.Ledger.Enabled, "LEDGER_ENABLED")
	envString(&cfg.Ledger.Backend, "LEDGER_BACKEND")
	envString(&cfg.Ledger.SQLite.Path, "LEDGER_SQLITE_PATH")
	envString(&cfg.Ledger.SQLite.Driver, "LEDGER_SQLITE_DRIVER")
	envInt(&cfg.Ledger.Retention.Days, "LEDGER_RETENTION_DAYS")

	// Telemetry overrides
	envString(&cfg.Telemetry.Logging.Level, "TELEMETRY_LOGGING_LEVEL")
	envString(&cfg.Telemetry.Logging.Format, "TELEMETRY_LOGGING_FORMAT")
	envBool(&cfg.Telemetry.Metrics.Enabled, "TELEMETRY_METRICS_ENABLED")
	envString(&cfg.Telemetry.Metrics.Path, "TELEMETRY_METRICS_PATH")
	envBool(&cfg.Telemetry.Tracing.Enabled, "TELEMETRY_TRACING_ENABLED")
	envString(&cfg.Telemetry.Tracing.Endpoint, "TELEMETRY_TRACING_ENDPOINT")
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

// withPort replaces the port of a host:port address.
func withPort(addr, port string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = ""
	}
	return net.JoinHostPort(host, port)
}

func envString(dst *string, key string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func envBool(dst *bool, key string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(dst *int, key string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envInt64(dst *int64, key string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			*dst = i
		}
	}
}

func envDuration(dst *time.Duration, key string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
