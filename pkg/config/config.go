package config

import "time"

// Config is the root configuration structure for the Pathshala media relay.
// It contains the HTTP server settings, the backend session, the content
// resolution and transfer tuning, the playback ledger and telemetry.
type Config struct {
	// Proxy contains HTTP server configuration including listen address,
	// timeouts and response headers.
	Proxy ProxyConfig `yaml:"proxy"`

	// Backend contains the connection settings for the messaging backend
	// that holds the media.
	Backend BackendConfig `yaml:"backend"`

	// Session contains Connection Supervisor settings.
	Session SessionConfig `yaml:"session"`

	// Resolver contains the client ID to message ID mapping constants.
	Resolver ResolverConfig `yaml:"resolver"`

	// Locator contains the retry policy used when fetching messages.
	Locator LocatorConfig `yaml:"locator"`

	// Transfer contains streaming strategy and tuning.
	Transfer TransferConfig `yaml:"transfer"`

	// Meta contains settings for the caption metadata endpoint.
	Meta MetaConfig `yaml:"meta"`

	// Ledger contains configuration for the playback ledger including
	// storage backend selection and retention.
	Ledger LedgerConfig `yaml:"ledger"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProxyConfig contains configuration for the HTTP server.
type ProxyConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:3000", ":3000").
	// The PORT environment variable overrides the port.
	// Default: ":3000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds the whole response write. Media responses can
	// legitimately stream for hours, so zero (no timeout) is the default;
	// stalled clients are bounded by transfer.stall_timeout instead.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// ReferrerPolicy is sent as the Referrer-Policy header on every response.
	// Empty disables the header.
	// Default: "no-referrer"
	ReferrerPolicy string `yaml:"referrer_policy"`

	// StaticDir is an optional directory served for every path not handled
	// by the API. Empty means unknown paths return 404.
	StaticDir string `yaml:"static_dir"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "HEAD", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Range", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Default: ["Content-Range", "Content-Length", "Accept-Ranges", "X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600 (1 hour)
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed in CORS requests.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// BackendConfig contains configuration for the messaging backend.
type BackendConfig struct {
	// Type selects the backend client implementation.
	// Options: "gateway" (HTTP session gateway), "memory" (in-process, for
	// local development and tests)
	// Default: "gateway"
	Type string `yaml:"type"`

	// BaseURL is the base URL of the session gateway.
	// Required when Type is "gateway".
	BaseURL string `yaml:"base_url"`

	// SessionToken is the already-authorized backend session string.
	// This should typically be loaded from an environment variable.
	SessionToken string `yaml:"session_token"`

	// Source is the single channel or collection all content is read from.
	// Required.
	Source string `yaml:"source"`

	// Timeout bounds each metadata call to the backend. Downloads are bounded
	// by the backend's own network timeout and the stall timeout.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns is the size of the pooled connection set to the gateway.
	// Default: 64
	MaxIdleConns int `yaml:"max_idle_conns"`

	// FixturesDir is loaded into the memory backend at startup. Files are
	// named after their message ID ("1042.mp4"); "<id>.txt" holds the caption.
	// Only used when Type is "memory".
	FixturesDir string `yaml:"fixtures_dir"`
}

// SessionConfig contains Connection Supervisor settings.
type SessionConfig struct {
	// HeartbeatInterval is how often the supervisor verifies the session.
	// Default: 25s
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// ConnectTimeout bounds a single connect or reconnect attempt.
	// Default: 15s
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// ResolverConfig holds the piecewise offset applied to client-facing IDs.
type ResolverConfig struct {
	// Threshold is the last client ID mapped with LowOffset.
	Threshold int64 `yaml:"threshold"`

	// LowOffset is added to client IDs at or below Threshold.
	LowOffset int64 `yaml:"low_offset"`

	// HighOffset is added to client IDs above Threshold.
	// Must be greater than LowOffset.
	HighOffset int64 `yaml:"high_offset"`
}

// LocatorConfig contains the Content Locator retry policy.
type LocatorConfig struct {
	// MaxAttempts is the total number of fetch attempts, including the first.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// RetryDelay is the fixed wait between attempts.
	// Default: 1s
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// TransferConfig contains Transfer Engine tuning.
type TransferConfig struct {
	// Profile selects a preset for strategy, chunk size and workers.
	// Options: "fast_start", "balanced", "throughput"
	// Explicit fields below override the profile.
	// Default: "balanced"
	Profile string `yaml:"profile"`

	// Strategy selects how bytes are pulled from the backend.
	// Options: "chunked", "bulk"
	Strategy string `yaml:"strategy"`

	// ChunkSize is the size of each backend part in bytes.
	ChunkSize int64 `yaml:"chunk_size"`

	// Workers is the number of parallel retrieval lanes for the bulk strategy.
	Workers int `yaml:"workers"`

	// StallTimeout bounds how long a single write may wait for the client to
	// drain. Zero disables the deadline.
	// Default: 2m
	StallTimeout time.Duration `yaml:"stall_timeout"`
}

// MetaConfig contains settings for the caption endpoint.
type MetaConfig struct {
	// DefaultText is returned when a message has no caption.
	// Default: "Untitled lecture"
	DefaultText string `yaml:"default_text"`

	// FallbackText is returned when the caption cannot be resolved at all.
	// Default: "Lecture details unavailable"
	FallbackText string `yaml:"fallback_text"`

	// CacheSize is the number of captions kept in memory. Zero disables caching.
	// Default: 1024
	CacheSize int `yaml:"cache_size"`

	// CacheTTL is how long a cached caption stays valid.
	// Default: 10m
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// LedgerConfig contains configuration for the playback ledger.
type LedgerConfig struct {
	// Enabled controls whether playback records are kept.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend specifies the storage backend for playback records.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/ledger.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains ledger recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain playback records.
	// 0 means keep forever.
	// Default: 30
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for the pruning job.
	// Default: "0 3 * * *" (3 AM daily)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords caps the number of stored records. 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit. Hot-reloadable.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks session tokens, authorization headers and file
	// references in log attributes.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "pathshala"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "relay"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for stream duration (seconds).
	// Default: [0.05, 0.1, 0.5, 1, 5, 30, 120, 600]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "pathshala-relay"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// VersionPath is the path for the version information endpoint.
	// Default: "/version"
	VersionPath string `yaml:"version_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
