// Package metrics provides Prometheus metrics for the Pathshala relay.
//
// # Overview
//
// A single Collector owns a registry and a few groups of metrics:
//
//   - Stream metrics: HTTP requests, media streams, bytes sent and
//     failures after headers were committed
//   - Backend metrics: session state, reconnects and content lookups
//   - Cache metrics: hits, misses and size of the caption cache
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.StreamStarted("/api/video/{id}")
//	defer collector.StreamFinished("/api/video/{id}", "chunked", "complete", n, time.Since(start))
//
//	collector.RecordReconnect("heartbeat", true)
//	collector.SetSessionConnected(true)
//
// Every method is a no-op on a nil or disabled Collector.
//
// # Mid-stream aborts
//
// Once a 200 or 206 status line has been sent the relay cannot report an
// error to the client. Those failures are only visible through
// pathshala_relay_mid_stream_aborts_total and the warning log line that
// accompanies it.
//
// # Cardinality
//
// Route labels come from route templates, never raw paths. As a guard the
// collector keeps at most 64 distinct routes and folds the rest into
// "other".
package metrics
