package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// ContentKey is the context key for the resolved content identifiers.
	ContentKey contextKey = "content"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"
)

type contentIDs struct {
	clientID  int64
	messageID int64
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithContent records the client ID from the URL and the backend message
// ID it resolved to.
func WithContent(ctx context.Context, clientID, messageID int64) context.Context {
	return context.WithValue(ctx, ContentKey, contentIDs{clientID: clientID, messageID: messageID})
}

// GetContent retrieves the content identifiers from the context.
func GetContent(ctx context.Context) (clientID, messageID int64, ok bool) {
	ids, ok := ctx.Value(ContentKey).(contentIDs)
	return ids.clientID, ids.messageID, ok
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// contextAttrs extracts common fields from context for logging.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	if requestID := GetRequestID(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if clientID, messageID, ok := GetContent(ctx); ok {
		attrs = append(attrs, slog.Int64("client_id", clientID), slog.Int64("message_id", messageID))
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		attrs = append(attrs, slog.String("trace_id", traceID))
	}
	return attrs
}
