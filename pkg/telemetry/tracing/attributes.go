package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for relay spans.
const (
	AttrRequestID     = attribute.Key("relay.request_id")
	AttrClientID      = attribute.Key("relay.client_id")
	AttrMessageID     = attribute.Key("relay.message_id")
	AttrMediaSize     = attribute.Key("relay.media.size")
	AttrMediaMIME     = attribute.Key("relay.media.mime_type")
	AttrRangeStart    = attribute.Key("relay.range.start")
	AttrRangeEnd      = attribute.Key("relay.range.end")
	AttrRangeStatus   = attribute.Key("relay.range.status")
	AttrStrategy      = attribute.Key("relay.transfer.strategy")
	AttrChunkSize     = attribute.Key("relay.transfer.chunk_size")
	AttrBytesSent     = attribute.Key("relay.transfer.bytes")
	AttrOutcome       = attribute.Key("relay.transfer.outcome")
	AttrAttempts      = attribute.Key("relay.locate.attempts")
	AttrReconnectFrom = attribute.Key("relay.session.trigger")
)

// ServerSpan returns start options for an inbound HTTP request span.
func ServerSpan(r *http.Request) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("http.request.method", r.Method),
		attribute.String("url.path", r.URL.Path),
		attribute.String("http.request.header.range", r.Header.Get("Range")),
	)
}

// SetContentAttributes records the identifiers of the requested content.
func SetContentAttributes(span trace.Span, clientID, messageID int64) {
	span.SetAttributes(
		AttrClientID.Int64(clientID),
		AttrMessageID.Int64(messageID),
	)
}

// SetMediaAttributes records the size and type of located media.
func SetMediaAttributes(span trace.Span, size int64, mimeType string) {
	span.SetAttributes(
		AttrMediaSize.Int64(size),
		AttrMediaMIME.String(mimeType),
	)
}

// SetRangeAttributes records the negotiated window and status.
func SetRangeAttributes(span trace.Span, start, end int64, status int) {
	span.SetAttributes(
		AttrRangeStart.Int64(start),
		AttrRangeEnd.Int64(end),
		AttrRangeStatus.Int(status),
	)
}

// SetTransferAttributes records how a body was streamed and how it ended.
func SetTransferAttributes(span trace.Span, strategy string, chunkSize, bytes int64, outcome string) {
	span.SetAttributes(
		AttrStrategy.String(strategy),
		AttrChunkSize.Int64(chunkSize),
		AttrBytesSent.Int64(bytes),
		AttrOutcome.String(outcome),
	)
}

// AddEvent adds a named event to the span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
