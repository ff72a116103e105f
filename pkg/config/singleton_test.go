package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func resetSingleton() {
	globalConfig = nil
	initOnce = *new(sync.Once)
}

func TestInitialize(t *testing.T) {
	resetSingleton()

	if err := Initialize(writeConfig(t, validGatewayConfig)); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Proxy.ListenAddress != "0.0.0.0:8080" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:8080", cfg.Proxy.ListenAddress)
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	resetSingleton()

	first := writeConfig(t, validGatewayConfig)
	second := writeConfig(t, `
backend:
  type: memory
proxy:
  listen_address: "0.0.0.0:9090"
`)

	if err := Initialize(first); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}
	_ = Initialize(second)

	if got := GetConfig().Proxy.ListenAddress; got != "0.0.0.0:8080" {
		t.Errorf("second Initialize call should be ignored, got listen address %q", got)
	}
}

func TestGetConfig_BeforeInitialize(t *testing.T) {
	resetSingleton()

	if cfg := GetConfig(); cfg != nil {
		t.Error("expected nil config before initialization")
	}
}

func TestSetConfig(t *testing.T) {
	resetSingleton()

	cfg := NewDefaultConfig()
	cfg.Proxy.ListenAddress = "192.168.1.1:7070"
	SetConfig(cfg)

	if got := GetConfig(); got == nil || got.Proxy.ListenAddress != "192.168.1.1:7070" {
		t.Errorf("expected config set via SetConfig, got %+v", got)
	}
}

func TestReloadConfig(t *testing.T) {
	resetSingleton()

	path := writeConfig(t, validGatewayConfig)
	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	updated := `
backend:
  type: memory
transfer:
  profile: throughput
`
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatalf("failed to update config file: %v", err)
	}

	if err := ReloadConfig(path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}

	if got := GetConfig().Transfer.Strategy; got != StrategyBulk {
		t.Errorf("expected reloaded strategy bulk, got %q", got)
	}
}

func TestReloadConfig_InvalidKeepsPrevious(t *testing.T) {
	resetSingleton()

	path := writeConfig(t, validGatewayConfig)
	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}
	before := GetConfig()

	if err := os.WriteFile(path, []byte("transfer:\n  profile: turbo\n"), 0644); err != nil {
		t.Fatalf("failed to update config file: %v", err)
	}

	if err := ReloadConfig(path); err == nil {
		t.Fatal("expected reload of invalid config to fail")
	}
	if GetConfig() != before {
		t.Error("expected previous config to remain after failed reload")
	}
}

func TestMustGetConfig_Panics(t *testing.T) {
	resetSingleton()

	defer func() {
		if recover() == nil {
			t.Error("expected panic when config is not initialized")
		}
	}()
	MustGetConfig()
}

func TestConcurrentAccess(t *testing.T) {
	resetSingleton()
	SetConfig(NewDefaultConfig())

	path := filepath.Join(t.TempDir(), "missing.yaml")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = GetConfig()
		}()
		go func() {
			defer wg.Done()
			_ = ReloadConfig(path)
		}()
	}
	wg.Wait()

	if GetConfig() == nil {
		t.Error("expected config to survive failed concurrent reloads")
	}
}
