package metrics

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Helper function to create test config
func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:         true,
		Namespace:       "test",
		Subsystem:       "relay",
		DurationBuckets: []float64{0.1, 0.5, 1.0, 5.0},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.config != cfg {
		t.Error("Collector config not set correctly")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_NewCollectorDefaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	collector := NewCollector(cfg, nil)

	if collector.Registry() == nil {
		t.Fatal("Expected a registry to be created")
	}
	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("Namespace = %q, want %q", cfg.Namespace, config.DefaultMetricsNamespace)
	}
	if len(cfg.DurationBuckets) == 0 {
		t.Error("Expected default duration buckets")
	}
}

func TestCollector_RecordRequest(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	tests := []struct {
		name   string
		route  string
		method string
		status int
	}{
		{name: "video range", route: "/api/video/{id}", method: http.MethodGet, status: http.StatusPartialContent},
		{name: "pdf head", route: "/api/pdf/{id}", method: http.MethodHead, status: http.StatusOK},
		{name: "bad id", route: "/api/video/{id}", method: http.MethodGet, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector.RecordRequest(tt.route, tt.method, tt.status, 100*time.Millisecond)

			count := testutil.ToFloat64(collector.streamMetrics.requestsTotal.WithLabelValues(
				tt.route, tt.method, strconv.Itoa(tt.status),
			))
			if count != 1 {
				t.Errorf("Expected count 1, got %f", count)
			}
		})
	}
}

func TestCollector_StreamLifecycle(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	route := "/api/video/{id}"

	collector.StreamStarted(route)
	collector.StreamStarted(route)

	active := collector.streamMetrics.activeStreams.WithLabelValues(route)
	if got := testutil.ToFloat64(active); got != 2 {
		t.Fatalf("active streams = %f, want 2", got)
	}

	collector.StreamFinished(route, "chunked", "complete", 4096, time.Second)
	collector.StreamFinished(route, "chunked", "client_gone", 0, time.Second)

	if got := testutil.ToFloat64(active); got != 0 {
		t.Errorf("active streams = %f, want 0", got)
	}
	if got := testutil.ToFloat64(collector.streamMetrics.streamsTotal.WithLabelValues(route, "chunked", "complete")); got != 1 {
		t.Errorf("complete streams = %f, want 1", got)
	}
	if got := testutil.ToFloat64(collector.streamMetrics.bytesTotal.WithLabelValues(route, "chunked")); got != 4096 {
		t.Errorf("bytes = %f, want 4096", got)
	}
}

func TestCollector_RecordMidStreamAbort(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordMidStreamAbort("/api/video/{id}", "backend")
	collector.RecordMidStreamAbort("/api/video/{id}", "backend")
	collector.RecordMidStreamAbort("/api/pdf/{id}", "stall")

	if got := testutil.ToFloat64(collector.streamMetrics.midStreamAborts.WithLabelValues("/api/video/{id}", "backend")); got != 2 {
		t.Errorf("video aborts = %f, want 2", got)
	}
	if got := testutil.ToFloat64(collector.streamMetrics.midStreamAborts.WithLabelValues("/api/pdf/{id}", "stall")); got != 1 {
		t.Errorf("pdf aborts = %f, want 1", got)
	}
}

func TestCollector_BackendMetrics(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.SetSessionConnected(true)
	if got := testutil.ToFloat64(collector.backendMetrics.connected); got != 1 {
		t.Errorf("connected = %f, want 1", got)
	}
	collector.SetSessionConnected(false)
	if got := testutil.ToFloat64(collector.backendMetrics.connected); got != 0 {
		t.Errorf("connected = %f, want 0", got)
	}

	collector.RecordReconnect("heartbeat", true)
	collector.RecordReconnect("request", false)
	if got := testutil.ToFloat64(collector.backendMetrics.reconnects.WithLabelValues("request", "failure")); got != 1 {
		t.Errorf("failed request reconnects = %f, want 1", got)
	}

	collector.RecordLocate("found", 1, 10*time.Millisecond)
	collector.RecordLocate("unavailable", 3, 2*time.Second)
	if got := testutil.ToFloat64(collector.backendMetrics.locateRetries); got != 2 {
		t.Errorf("locate retries = %f, want 2", got)
	}
	if got := testutil.ToFloat64(collector.backendMetrics.locateTotal.WithLabelValues("unavailable")); got != 1 {
		t.Errorf("unavailable lookups = %f, want 1", got)
	}
}

func TestCollector_CacheMetrics(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordCacheHit("captions")
	collector.RecordCacheHit("captions")
	collector.RecordCacheMiss("captions")
	collector.RecordCacheEviction("captions")
	collector.UpdateCacheSize("captions", 7)

	if got := testutil.ToFloat64(collector.cacheMetrics.hitsTotal.WithLabelValues("captions")); got != 2 {
		t.Errorf("hits = %f, want 2", got)
	}
	if got := testutil.ToFloat64(collector.cacheMetrics.missesTotal.WithLabelValues("captions")); got != 1 {
		t.Errorf("misses = %f, want 1", got)
	}
	if got := testutil.ToFloat64(collector.cacheMetrics.entries.WithLabelValues("captions")); got != 7 {
		t.Errorf("entries = %f, want 7", got)
	}
}

func TestCollector_DisabledAndNil(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordMidStreamAbort("/api/video/{id}", "backend")
	if got := testutil.ToFloat64(collector.streamMetrics.midStreamAborts.WithLabelValues("/api/video/{id}", "backend")); got != 0 {
		t.Errorf("disabled collector recorded %f aborts", got)
	}

	var nilCollector *Collector
	nilCollector.RecordRequest("/", http.MethodGet, 200, time.Millisecond)
	nilCollector.StreamStarted("/")
	nilCollector.StreamFinished("/", "bulk", "complete", 1, time.Millisecond)
	nilCollector.RecordReconnect("startup", true)
	nilCollector.RecordCacheHit("captions")
}

func TestCollector_RouteCardinality(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	for i := 0; i < 100; i++ {
		collector.RecordMidStreamAbort("/route/"+strconv.Itoa(i), "backend")
	}
	if got := collector.routeLimiter.Count(); got != 64 {
		t.Errorf("route cardinality = %d, want 64", got)
	}
	if got := testutil.ToFloat64(collector.streamMetrics.midStreamAborts.WithLabelValues("other", "backend")); got != 36 {
		t.Errorf("folded aborts = %f, want 36", got)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("expected first two values to be allowed")
	}
	if cl.Allow("c") {
		t.Error("expected third value to be rejected")
	}
	if !cl.Allow("a") {
		t.Error("expected known value to stay allowed")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}

func TestHandler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordMidStreamAbort("/api/video/{id}", "backend")

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_relay_mid_stream_aborts_total") {
		t.Error("expected abort counter in exposition output")
	}
}
