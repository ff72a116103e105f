package metrics

import (
	"strconv"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// StreamMetrics tracks HTTP requests and media streams.
//
// Metrics:
//   - pathshala_relay_requests_total: requests by route, method, status
//   - pathshala_relay_request_duration_seconds: time to handle a request
//   - pathshala_relay_streams_total: finished streams by strategy and outcome
//   - pathshala_relay_stream_bytes_total: body bytes sent to clients
//   - pathshala_relay_stream_duration_seconds: stream duration
//   - pathshala_relay_active_streams: streams in flight
//   - pathshala_relay_mid_stream_aborts_total: failures after headers were sent
type StreamMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	streamsTotal    *prometheus.CounterVec
	bytesTotal      *prometheus.CounterVec
	streamDuration  *prometheus.HistogramVec
	activeStreams   *prometheus.GaugeVec
	midStreamAborts *prometheus.CounterVec
}

// NewStreamMetrics creates and registers stream metrics with the provided registry.
func NewStreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StreamMetrics {
	sm := &StreamMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled",
			},
			[]string{"route", "method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"route"},
		),

		streamsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "streams_total",
				Help:      "Total number of media streams by outcome",
			},
			[]string{"route", "strategy", "outcome"},
		),

		bytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_bytes_total",
				Help:      "Total media bytes written to clients",
			},
			[]string{"route", "strategy"},
		),

		streamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_duration_seconds",
				Help:      "Duration of media streams in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"strategy"},
		),

		activeStreams: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "active_streams",
				Help:      "Number of media streams in flight",
			},
			[]string{"route"},
		),

		midStreamAborts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "mid_stream_aborts_total",
				Help:      "Streams terminated after response headers were committed",
			},
			[]string{"route", "reason"},
		),
	}

	registry.MustRegister(
		sm.requestsTotal,
		sm.requestDuration,
		sm.streamsTotal,
		sm.bytesTotal,
		sm.streamDuration,
		sm.activeStreams,
		sm.midStreamAborts,
	)

	return sm
}

// RecordRequest records a completed HTTP request.
func (sm *StreamMetrics) RecordRequest(route, method string, status int, duration time.Duration) {
	sm.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	sm.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordStream records a finished media stream.
func (sm *StreamMetrics) RecordStream(route, strategy, outcome string, bytes int64, duration time.Duration) {
	sm.streamsTotal.WithLabelValues(route, strategy, outcome).Inc()
	if bytes > 0 {
		sm.bytesTotal.WithLabelValues(route, strategy).Add(float64(bytes))
	}
	sm.streamDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}
