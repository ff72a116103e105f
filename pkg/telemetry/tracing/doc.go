// Package tracing provides OpenTelemetry tracing for the relay.
//
// # Overview
//
// Each inbound request gets a server span from HTTPMiddleware. Handlers add
// child spans for the content lookup and for the transfer, so a trace shows
// how long a viewer waited on the backend before the first byte and how the
// body was streamed afterwards.
//
// Spans are exported over OTLP/gRPC. When tracing is disabled New returns a
// noop tracer and none of the helpers allocate.
//
// # Propagation
//
// W3C trace context is read from incoming requests and written to calls made
// by the gateway backend client:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// # Sampling
//
// Three strategies are supported, always wrapped in ParentBased:
//   - always: sample every trace
//   - never: sample nothing
//   - ratio: sample by trace ID hash (sample_ratio between 0.0 and 1.0)
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    sampler: ratio
//	    sample_ratio: 0.1
//	    endpoint: localhost:4317
//	    service_name: pathshala-relay
//	    insecure: true
package tracing
