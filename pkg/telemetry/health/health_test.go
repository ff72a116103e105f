package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{name: "default timeout", timeout: 0, expectedTimeout: 5 * time.Second},
		{name: "custom timeout", timeout: 10 * time.Second, expectedTimeout: 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)
			if checker.checkTimeout != tt.expectedTimeout {
				t.Errorf("checkTimeout = %v, want %v", checker.checkTimeout, tt.expectedTimeout)
			}
		})
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("ledger", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("backend_session", func(ctx context.Context) error { return nil })

	names := checker.ListChecks()
	if len(names) != 2 || names[0] != "backend_session" || names[1] != "ledger" {
		t.Errorf("ListChecks() = %v", names)
	}

	checker.UnregisterCheck("ledger")
	if names := checker.ListChecks(); len(names) != 1 {
		t.Errorf("expected 1 check after unregister, got %v", names)
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"backend_session": func(ctx context.Context) error { return nil },
				"ledger":          func(ctx context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "session down",
			checks: map[string]CheckFunc{
				"backend_session": func(ctx context.Context) error { return errors.New("backend session not connected") },
				"ledger":          func(ctx context.Context) error { return nil },
			},
			wantStatus: StatusNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", status.Status, tt.wantStatus)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("got %d results, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(50 * time.Millisecond)
	checker.RegisterCheck("stuck", func(ctx context.Context) error {
		time.Sleep(time.Second)
		return nil
	})

	start := time.Now()
	status := checker.CheckReadiness(context.Background())

	if time.Since(start) > 500*time.Millisecond {
		t.Error("readiness waited for a check that ignores its context")
	}
	if status.Checks["stuck"].Message != "health check timeout" {
		t.Errorf("message = %q", status.Checks["stuck"].Message)
	}
	if status.Status != StatusNotReady {
		t.Errorf("Status = %q, want %q", status.Status, StatusNotReady)
	}
}

func TestLivenessHandler(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("backend_session", func(ctx context.Context) error { return errors.New("down") })

	tests := []struct {
		method   string
		wantCode int
		wantBody bool
	}{
		{http.MethodGet, http.StatusOK, true},
		{http.MethodHead, http.StatusOK, false},
		{http.MethodPost, http.StatusMethodNotAllowed, true},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			checker.LivenessHandler()(rec, httptest.NewRequest(tt.method, "/health", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if (rec.Body.Len() > 0) != tt.wantBody {
				t.Errorf("body present = %v, want %v", rec.Body.Len() > 0, tt.wantBody)
			}
		})
	}
}

func TestReadinessHandler(t *testing.T) {
	healthy := true
	checker := New(time.Second)
	checker.RegisterCheck("backend_session", func(ctx context.Context) error {
		if !healthy {
			return errors.New("backend session not connected")
		}
		return nil
	})

	rec := httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthy code = %d, want 200", rec.Code)
	}

	healthy = false
	rec = httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy code = %d, want 503", rec.Code)
	}

	var status HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Checks["backend_session"].Status != StatusUnhealthy {
		t.Errorf("session check = %+v", status.Checks["backend_session"])
	}
}

func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler("1.2.0", "abc123", "2026-01-01")(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != "1.2.0" || info.Commit != "abc123" || info.GoVersion == "" {
		t.Errorf("unexpected version info: %+v", info)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
}
