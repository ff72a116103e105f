package metrics

import (
	"sync"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the single entry point for all Prometheus metrics emitted by
// the relay. Every method is safe on a nil *Collector and on a disabled one,
// so components can take an optional collector without guarding each call.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	streamMetrics  *StreamMetrics
	backendMetrics *BackendMetrics
	cacheMetrics   *CacheMetrics

	// routeLimiter caps the number of distinct route labels.
	routeLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector. If registry is nil a fresh
// registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "pathshala",
//		Subsystem: "relay",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		// Streams range from a HEAD probe to a full lecture.
		cfg.DurationBuckets = []float64{0.05, 0.1, 0.5, 1, 5, 30, 120, 600}
	}

	c := &Collector{
		config:       cfg,
		registry:     registry,
		routeLimiter: NewCardinalityLimiter(64),
	}

	c.streamMetrics = NewStreamMetrics(cfg, registry)
	c.backendMetrics = NewBackendMetrics(cfg, registry)
	c.cacheMetrics = NewCacheMetrics(cfg, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

func (c *Collector) route(route string) string {
	if !c.routeLimiter.Allow(route) {
		return "other"
	}
	return route
}

// RecordRequest records a completed HTTP request.
//
// Parameters:
//   - route: route template (e.g., "/api/video/{id}")
//   - method: HTTP method
//   - status: response status code
//   - duration: total handling time
func (c *Collector) RecordRequest(route, method string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.streamMetrics.RecordRequest(c.route(route), method, status, duration)
}

// StreamStarted increments the in-flight stream gauge. Pair with StreamFinished.
func (c *Collector) StreamStarted(route string) {
	if !c.enabled() {
		return
	}
	c.streamMetrics.activeStreams.WithLabelValues(c.route(route)).Inc()
}

// StreamFinished records the end of a media stream.
//
// Parameters:
//   - route: route template
//   - strategy: "chunked" or "bulk"
//   - outcome: "complete", "client_gone" or "aborted"
//   - bytes: body bytes written to the client
//   - duration: time from first backend call to end of stream
func (c *Collector) StreamFinished(route, strategy, outcome string, bytes int64, duration time.Duration) {
	if !c.enabled() {
		return
	}
	route = c.route(route)
	c.streamMetrics.activeStreams.WithLabelValues(route).Dec()
	c.streamMetrics.RecordStream(route, strategy, outcome, bytes, duration)
}

// RecordMidStreamAbort records a failure after response headers were sent.
// The client only sees a truncated body, so this counter is the main signal.
func (c *Collector) RecordMidStreamAbort(route, reason string) {
	if !c.enabled() {
		return
	}
	c.streamMetrics.midStreamAborts.WithLabelValues(c.route(route), reason).Inc()
}

// RecordLocate records the result of a Content Locator lookup.
//
// Parameters:
//   - result: "found", "not_found", "unavailable" or "cancelled"
//   - attempts: number of backend fetches made
//   - duration: total lookup time including retry delays
func (c *Collector) RecordLocate(result string, attempts int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.backendMetrics.RecordLocate(result, attempts, duration)
}

// RecordReconnect records a reconnect attempt by the Connection Supervisor.
//
// Parameters:
//   - trigger: "startup", "heartbeat" or "request"
//   - success: whether the session came back
func (c *Collector) RecordReconnect(trigger string, success bool) {
	if !c.enabled() {
		return
	}
	c.backendMetrics.RecordReconnect(trigger, success)
}

// SetSessionConnected updates the backend session gauge (1=connected).
func (c *Collector) SetSessionConnected(connected bool) {
	if !c.enabled() {
		return
	}
	c.backendMetrics.SetConnected(connected)
}

// RecordCacheHit records a cache hit.
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a cache miss.
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordMiss(cacheName)
}

// RecordCacheEviction records a cache eviction.
func (c *Collector) RecordCacheEviction(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordEviction(cacheName)
}

// UpdateCacheSize updates the current size of a cache.
func (c *Collector) UpdateCacheSize(cacheName string, size int) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.UpdateSize(cacheName, size)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether a label value may be used: it is already known or
// the limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
