// Package telemetry groups the relay's observability packages.
//
//   - logging: slog handler with context fields and secret redaction
//   - metrics: Prometheus collector for requests, streams and the backend session
//   - tracing: OpenTelemetry spans exported over OTLP/gRPC
//   - health: liveness, readiness and version endpoints
//
// Each subpackage is configured from config.TelemetryConfig and wired in
// cmd/pathshala.
package telemetry
