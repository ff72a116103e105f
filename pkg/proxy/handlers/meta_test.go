package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/backend"
	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/proxy/types"
	"github.com/Meijaisharma/PathshalaPro/pkg/resolver"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

func testMetaConfig() config.MetaConfig {
	return config.MetaConfig{
		DefaultText:  "Untitled lecture",
		FallbackText: "Lecture details unavailable",
		CacheSize:    8,
		CacheTTL:     time.Minute,
	}
}

// countingCaptioner wraps a Captioner and counts backend lookups.
type countingCaptioner struct {
	next  Captioner
	calls atomic.Int32
}

func (c *countingCaptioner) Caption(ctx context.Context, id int64) (string, error) {
	c.calls.Add(1)
	return c.next.Caption(ctx, id)
}

type failingCaptioner struct{}

func (failingCaptioner) Caption(context.Context, int64) (string, error) {
	return "", errors.New("backend exploded")
}

func serveMeta(t *testing.T, h http.Handler, id string) string {
	t.Helper()
	router := mux.NewRouter()
	router.Handle(MetaRoute, h).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/meta/"+id, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	var resp types.MetaResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body %q: %v", rec.Body.String(), err)
	}
	return resp.Text
}

func TestMetaHandler(t *testing.T) {
	f := newFixture(t)
	f.backend.AddMessage(testSource, backend.Message{ID: 9})

	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "caption", id: videoID, want: "Optics part 1"},
		{name: "empty caption", id: captionID, want: "Untitled lecture"},
		{name: "missing message", id: "100", want: "Lecture details unavailable"},
		{name: "bad identifier", id: "x1", want: "Lecture details unavailable"},
	}

	h := NewMetaHandler(f.resolver, f.locator, testMetaConfig(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serveMeta(t, h, tt.id); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetaHandler_BackendFailure(t *testing.T) {
	res, _ := resolver.New(120, 3, 7)
	h := NewMetaHandler(res, failingCaptioner{}, testMetaConfig(), nil)

	if got := serveMeta(t, h, "5"); got != "Lecture details unavailable" {
		t.Errorf("text = %q", got)
	}
}

func TestMetaHandler_Cache(t *testing.T) {
	f := newFixture(t)
	captions := &countingCaptioner{next: f.locator}
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test", Subsystem: "relay"}, prometheus.NewRegistry())
	h := NewMetaHandler(f.resolver, captions, testMetaConfig(), collector)

	for i := 0; i < 3; i++ {
		if got := serveMeta(t, h, videoID); got != "Optics part 1" {
			t.Fatalf("text = %q", got)
		}
	}
	if n := captions.calls.Load(); n != 1 {
		t.Errorf("backend lookups = %d, want 1", n)
	}

	// Failures are not cached.
	serveMeta(t, h, "100")
	serveMeta(t, h, "100")
	if n := captions.calls.Load(); n != 3 {
		t.Errorf("backend lookups = %d, want 3", n)
	}
}

func TestMetaHandler_CacheDisabled(t *testing.T) {
	f := newFixture(t)
	captions := &countingCaptioner{next: f.locator}
	cfg := testMetaConfig()
	cfg.CacheSize = 0
	h := NewMetaHandler(f.resolver, captions, cfg, nil)

	serveMeta(t, h, videoID)
	serveMeta(t, h, videoID)
	if n := captions.calls.Load(); n != 2 {
		t.Errorf("backend lookups = %d, want 2", n)
	}
}

func TestFallbackHandlers(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFoundHandler{}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("not found status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	MethodNotAllowedHandler{}.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/video/5", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("method status = %d", rec.Code)
	}
	if detail := decodeError(t, rec.Body.Bytes()); detail.Code != types.CodeMethodNotAllowed {
		t.Errorf("code = %q", detail.Code)
	}
}
