package metrics

import (
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// BackendMetrics tracks the backend session and content lookups.
//
// Metrics:
//   - pathshala_relay_session_connected: 1 while the backend session is up
//   - pathshala_relay_session_reconnects_total: reconnect attempts by trigger and result
//   - pathshala_relay_locate_total: lookups by result
//   - pathshala_relay_locate_retries_total: fetches beyond the first attempt
//   - pathshala_relay_locate_duration_seconds: lookup time including retry delays
type BackendMetrics struct {
	connected      prometheus.Gauge
	reconnects     *prometheus.CounterVec
	locateTotal    *prometheus.CounterVec
	locateRetries  prometheus.Counter
	locateDuration prometheus.Histogram
}

// NewBackendMetrics creates and registers backend metrics with the provided registry.
func NewBackendMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BackendMetrics {
	bm := &BackendMetrics{
		connected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "session_connected",
				Help:      "Backend session status (1=connected, 0=disconnected)",
			},
		),

		reconnects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "session_reconnects_total",
				Help:      "Backend reconnect attempts",
			},
			[]string{"trigger", "result"},
		),

		locateTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "locate_total",
				Help:      "Content lookups by result",
			},
			[]string{"result"},
		),

		locateRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "locate_retries_total",
				Help:      "Backend fetches made after a failed first attempt",
			},
		),

		locateDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "locate_duration_seconds",
				Help:      "Content lookup duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
	}

	registry.MustRegister(
		bm.connected,
		bm.reconnects,
		bm.locateTotal,
		bm.locateRetries,
		bm.locateDuration,
	)

	return bm
}

// RecordLocate records a finished lookup.
func (bm *BackendMetrics) RecordLocate(result string, attempts int, duration time.Duration) {
	bm.locateTotal.WithLabelValues(result).Inc()
	if attempts > 1 {
		bm.locateRetries.Add(float64(attempts - 1))
	}
	bm.locateDuration.Observe(duration.Seconds())
}

// RecordReconnect records a reconnect attempt.
func (bm *BackendMetrics) RecordReconnect(trigger string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	bm.reconnects.WithLabelValues(trigger, result).Inc()
}

// SetConnected updates the session gauge.
func (bm *BackendMetrics) SetConnected(connected bool) {
	if connected {
		bm.connected.Set(1)
		return
	}
	bm.connected.Set(0)
}
