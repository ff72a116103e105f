package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validGatewayConfig = `
proxy:
  listen_address: "0.0.0.0:8080"
  read_timeout: "60s"

backend:
  type: gateway
  base_url: "http://127.0.0.1:9000"
  session_token: "1BQANOTEuMTA4LjU2LjE0MAG7"
  source: "pathshala_lectures"

resolver:
  threshold: 120
  low_offset: 3
  high_offset: 7

transfer:
  profile: fast_start

ledger:
  enabled: false

telemetry:
  logging:
    level: "debug"
    format: "text"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validGatewayConfig))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Proxy.ListenAddress != "0.0.0.0:8080" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:8080", cfg.Proxy.ListenAddress)
	}
	if cfg.Proxy.ReadTimeout != 60*time.Second {
		t.Errorf("expected read timeout %v, got %v", 60*time.Second, cfg.Proxy.ReadTimeout)
	}
	if cfg.Backend.Source != "pathshala_lectures" {
		t.Errorf("expected source %q, got %q", "pathshala_lectures", cfg.Backend.Source)
	}
	if cfg.Resolver.HighOffset != 7 {
		t.Errorf("expected high offset 7, got %d", cfg.Resolver.HighOffset)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_ProfileExpansion(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validGatewayConfig))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Transfer.Strategy != StrategyChunked {
		t.Errorf("expected strategy %q, got %q", StrategyChunked, cfg.Transfer.Strategy)
	}
	if cfg.Transfer.ChunkSize != 128*1024 {
		t.Errorf("expected chunk size %d, got %d", 128*1024, cfg.Transfer.ChunkSize)
	}
	if cfg.Transfer.Workers != 1 {
		t.Errorf("expected 1 worker, got %d", cfg.Transfer.Workers)
	}
}

func TestLoadConfig_ExplicitFalseSurvives(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validGatewayConfig))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Ledger.Enabled {
		t.Error("expected ledger.enabled=false from file to be preserved")
	}
	if !cfg.Proxy.CORS.Enabled {
		t.Error("expected CORS to default to enabled")
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
	if !strings.Contains(err.Error(), "no such file or directory") {
		t.Errorf("expected file not found error, got: %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, `
proxy:
  listen_address: "0.0.0.0:8080"
  invalid yaml here: [
`)

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
backend:
  type: gateway
resolver:
  low_offset: 9
  high_offset: 2
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	fields := make(map[string]bool)
	for _, fe := range validationErr.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{"backend.base_url", "backend.source", "resolver.high_offset"} {
		if !fields[want] {
			t.Errorf("expected error for %s, got %v", want, validationErr.Errors)
		}
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, validGatewayConfig)

	t.Setenv("PATHSHALA_BACKEND_SESSION_TOKEN", "env-token")
	t.Setenv("PATHSHALA_TRANSFER_WORKERS", "3")
	t.Setenv("PATHSHALA_LOCATOR_RETRY_DELAY", "250ms")
	t.Setenv("PATHSHALA_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Backend.SessionToken != "env-token" {
		t.Errorf("expected session token from env, got %q", cfg.Backend.SessionToken)
	}
	if cfg.Transfer.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Transfer.Workers)
	}
	if cfg.Locator.RetryDelay != 250*time.Millisecond {
		t.Errorf("expected retry delay 250ms, got %v", cfg.Locator.RetryDelay)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected logging level warn, got %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_Port(t *testing.T) {
	tests := []struct {
		name   string
		listen string
		port   string
		want   string
	}{
		{name: "host kept", listen: "0.0.0.0:8080", port: "5000", want: "0.0.0.0:5000"},
		{name: "bare port", listen: ":3000", port: "8443", want: ":8443"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PATHSHALA_BACKEND_TYPE", "memory")
			t.Setenv("PATHSHALA_PROXY_LISTEN_ADDRESS", tt.listen)
			t.Setenv("PORT", tt.port)

			cfg, err := LoadConfigWithEnvOverrides("")
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}
			if cfg.Proxy.ListenAddress != tt.want {
				t.Errorf("expected listen address %q, got %q", tt.want, cfg.Proxy.ListenAddress)
			}
		})
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("PATHSHALA_BACKEND_TYPE", "memory")
	t.Setenv("PATHSHALA_TRANSFER_WORKERS", "many")
	t.Setenv("PATHSHALA_SESSION_HEARTBEAT_INTERVAL", "soon")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Transfer.Workers != 1 {
		t.Errorf("expected default workers to remain, got %d", cfg.Transfer.Workers)
	}
	if cfg.Session.HeartbeatInterval != DefaultHeartbeatInterval {
		t.Errorf("expected default heartbeat to remain, got %v", cfg.Session.HeartbeatInterval)
	}
}
