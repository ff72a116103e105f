// Package config provides configuration management for the Pathshala media relay.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// An empty path to LoadConfigWithEnvOverrides starts from defaults only, so a
// deployment can be configured entirely from the environment.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention PATHSHALA_SECTION_FIELD:
//
//   - PATHSHALA_BACKEND_SESSION_TOKEN overrides backend.session_token
//   - PATHSHALA_TRANSFER_PROFILE overrides transfer.profile
//   - PATHSHALA_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// PORT replaces the port of proxy.listen_address, matching common hosting
// platforms.
//
// # Transfer Profiles
//
// transfer.profile selects a preset for strategy, chunk size and workers:
//
//	fast_start   chunked, 128KiB, 1 worker
//	balanced     chunked, 512KiB, 1 worker
//	throughput   bulk,    1MiB,   4 workers
//
// Explicit transfer.strategy, transfer.chunk_size and transfer.workers values
// override the preset.
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify and swaps the
// singleton on change. Transfer tuning and the log level are applied to the
// running process; everything else requires a restart.
//
// # Example Configuration
//
//	proxy:
//	  listen_address: ":3000"
//
//	backend:
//	  type: gateway
//	  base_url: "http://127.0.0.1:8081"
//	  source: "pathshala_lectures"
//
//	resolver:
//	  threshold: 120
//	  low_offset: 3
//	  high_offset: 7
//
//	transfer:
//	  profile: fast_start
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton uses a read-write
// lock to allow concurrent reads while protecting reloads.
package config
