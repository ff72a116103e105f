package config

import "time"

// Default values for configuration fields.
const (
	// Proxy defaults
	DefaultListenAddress   = ":3000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 0
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultReferrerPolicy  = "no-referrer"

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Backend defaults
	DefaultBackendType         = "gateway"
	DefaultBackendTimeout      = 30 * time.Second
	DefaultBackendMaxIdleConns = 64

	// Session defaults
	DefaultHeartbeatInterval = 25 * time.Second
	DefaultConnectTimeout    = 15 * time.Second

	// Locator defaults
	DefaultLocatorMaxAttempts = 3
	DefaultLocatorRetryDelay  = time.Second

	// Transfer defaults
	DefaultTransferProfile      = ProfileBalanced
	DefaultTransferStallTimeout = 2 * time.Minute

	// Meta defaults
	DefaultMetaText         = "Untitled lecture"
	DefaultMetaFallbackText = "Lecture details unavailable"
	DefaultMetaCacheSize    = 1024
	DefaultMetaCacheTTL     = 10 * time.Minute

	// Ledger defaults
	DefaultLedgerEnabled              = true
	DefaultLedgerBackend              = "sqlite"
	DefaultLedgerSQLitePath           = "data/ledger.db"
	DefaultLedgerSQLiteDriver         = "sqlite"
	DefaultLedgerSQLiteMaxOpenConns   = 10
	DefaultLedgerSQLiteMaxIdleConns   = 5
	DefaultLedgerSQLiteWALMode        = true
	DefaultLedgerSQLiteBusyTimeout    = 5 * time.Second
	DefaultLedgerRecorderAsyncBuffer  = 1000
	DefaultLedgerRecorderWriteTimeout = 5 * time.Second
	DefaultLedgerRetentionDays        = 30
	DefaultLedgerRetentionSchedule    = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultLoggingRedact       = true
	DefaultMetricsEnabled      = true
	DefaultPrometheusPath      = "/metrics"
	DefaultMetricsNamespace    = "pathshala"
	DefaultMetricsSubsystem    = "relay"
	DefaultTracingEnabled      = false
	DefaultTracingSampler      = "ratio"
	DefaultTracingSamplingRate = 0.1
	DefaultTracingServiceName  = "pathshala-relay"
	DefaultTracingInsecure     = true
	DefaultTracingTimeout      = 10 * time.Second
	DefaultHealthEnabled       = true
	DefaultLivenessPath        = "/health"
	DefaultReadinessPath       = "/ready"
	DefaultVersionPath         = "/version"
	DefaultHealthCheckTimeout  = 5 * time.Second
)

// Transfer profile names.
const (
	ProfileFastStart  = "fast_start"
	ProfileBalanced   = "balanced"
	ProfileThroughput = "throughput"
)

// Transfer strategy names.
const (
	StrategyChunked = "chunked"
	StrategyBulk    = "bulk"
)

// transferProfiles holds the deployment presets. Small chunks favour time to
// first byte; large chunks and extra lanes favour sustained throughput.
var transferProfiles = map[string]TransferConfig{
	ProfileFastStart:  {Strategy: StrategyChunked, ChunkSize: 128 * 1024, Workers: 1},
	ProfileBalanced:   {Strategy: StrategyChunked, ChunkSize: 512 * 1024, Workers: 1},
	ProfileThroughput: {Strategy: StrategyBulk, ChunkSize: 1024 * 1024, Workers: 4},
}

// NewDefaultConfig returns a configuration with every default applied,
// including boolean defaults that ApplyDefaults cannot infer from zero values.
// LoadConfig decodes YAML on top of it so that an explicit "false" survives.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Proxy.CORS.Enabled = DefaultCORSEnabled
	cfg.Ledger.Enabled = DefaultLedgerEnabled
	cfg.Ledger.SQLite.WALMode = DefaultLedgerSQLiteWALMode
	cfg.Telemetry.Logging.RedactSecrets = DefaultLoggingRedact
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Enabled = DefaultTracingEnabled
	cfg.Telemetry.Tracing.Insecure = DefaultTracingInsecure
	cfg.Telemetry.Health.Enabled = DefaultHealthEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Proxy defaults
	if cfg.Proxy.ListenAddress == "" {
		cfg.Proxy.ListenAddress = DefaultListenAddress
	}
	if cfg.Proxy.ReadTimeout == 0 {
		cfg.Proxy.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Proxy.IdleTimeout == 0 {
		cfg.Proxy.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Proxy.MaxHeaderBytes == 0 {
		cfg.Proxy.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Proxy.ReferrerPolicy == "" {
		cfg.Proxy.ReferrerPolicy = DefaultReferrerPolicy
	}
	applyCORSDefaults(&cfg.Proxy.CORS)

	// Backend defaults
	if cfg.Backend.Type == "" {
		cfg.Backend.Type = DefaultBackendType
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = DefaultBackendTimeout
	}
	if cfg.Backend.MaxIdleConns == 0 {
		cfg.Backend.MaxIdleConns = DefaultBackendMaxIdleConns
	}

	// Session defaults
	if cfg.Session.HeartbeatInterval == 0 {
		cfg.Session.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.Session.ConnectTimeout == 0 {
		cfg.Session.ConnectTimeout = DefaultConnectTimeout
	}

	// Locator defaults
	if cfg.Locator.MaxAttempts == 0 {
		cfg.Locator.MaxAttempts = DefaultLocatorMaxAttempts
	}
	if cfg.Locator.RetryDelay == 0 {
		cfg.Locator.RetryDelay = DefaultLocatorRetryDelay
	}

	applyTransferDefaults(&cfg.Transfer)

	// Meta defaults
	if cfg.Meta.DefaultText == "" {
		cfg.Meta.DefaultText = DefaultMetaText
	}
	if cfg.Meta.FallbackText == "" {
		cfg.Meta.FallbackText = DefaultMetaFallbackText
	}
	if cfg.Meta.CacheSize == 0 {
		cfg.Meta.CacheSize = DefaultMetaCacheSize
	}
	if cfg.Meta.CacheTTL == 0 {
		cfg.Meta.CacheTTL = DefaultMetaCacheTTL
	}

	// Ledger defaults
	if cfg.Ledger.Backend == "" {
		cfg.Ledger.Backend = DefaultLedgerBackend
	}
	if cfg.Ledger.SQLite.Path == "" {
		cfg.Ledger.SQLite.Path = DefaultLedgerSQLitePath
	}
	if cfg.Ledger.SQLite.Driver == "" {
		cfg.Ledger.SQLite.Driver = DefaultLedgerSQLiteDriver
	}
	if cfg.Ledger.SQLite.MaxOpenConns == 0 {
		cfg.Ledger.SQLite.MaxOpenConns = DefaultLedgerSQLiteMaxOpenConns
	}
	if cfg.Ledger.SQLite.MaxIdleConns == 0 {
		cfg.Ledger.SQLite.MaxIdleConns = DefaultLedgerSQLiteMaxIdleConns
	}
	if cfg.Ledger.SQLite.BusyTimeout == 0 {
		cfg.Ledger.SQLite.BusyTimeout = DefaultLedgerSQLiteBusyTimeout
	}
	if cfg.Ledger.Recorder.AsyncBuffer == 0 {
		cfg.Ledger.Recorder.AsyncBuffer = DefaultLedgerRecorderAsyncBuffer
	}
	if cfg.Ledger.Recorder.WriteTimeout == 0 {
		cfg.Ledger.Recorder.WriteTimeout = DefaultLedgerRecorderWriteTimeout
	}
	if cfg.Ledger.Retention.Days == 0 {
		cfg.Ledger.Retention.Days = DefaultLedgerRetentionDays
	}
	if cfg.Ledger.Retention.PruneSchedule == "" {
		cfg.Ledger.Retention.PruneSchedule = DefaultLedgerRetentionSchedule
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "HEAD", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Range", "Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"Content-Range", "Content-Length", "Accept-Ranges", "X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}

// applyTransferDefaults fills strategy, chunk size and workers from the
// selected profile, keeping any value set explicitly.
func applyTransferDefaults(t *TransferConfig) {
	if t.Profile == "" {
		t.Profile = DefaultTransferProfile
	}
	if preset, ok := transferProfiles[t.Profile]; ok {
		if t.Strategy == "" {
			t.Strategy = preset.Strategy
		}
		if t.ChunkSize == 0 {
			t.ChunkSize = preset.ChunkSize
		}
		if t.Workers == 0 {
			t.Workers = preset.Workers
		}
	}
	if t.StallTimeout == 0 {
		t.StallTimeout = DefaultTransferStallTimeout
	}
}

// applyTelemetryDefaults applies default values to telemetry configuration.
func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultPrometheusPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if t.Metrics.Subsystem == "" {
		t.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(t.Metrics.DurationBuckets) == 0 {
		t.Metrics.DurationBuckets = []float64{0.05, 0.1, 0.5, 1, 5, 30, 120, 600}
	}
	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingServiceName
	}
	if t.Tracing.Timeout == 0 {
		t.Tracing.Timeout = DefaultTracingTimeout
	}
	if t.Health.LivenessPath == "" {
		t.Health.LivenessPath = DefaultLivenessPath
	}
	if t.Health.ReadinessPath == "" {
		t.Health.ReadinessPath = DefaultReadinessPath
	}
	if t.Health.VersionPath == "" {
		t.Health.VersionPath = DefaultVersionPath
	}
	if t.Health.CheckTimeout == 0 {
		t.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
