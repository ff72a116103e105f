// Package middleware provides HTTP middleware for cross-cutting concerns:
// request IDs, access logging with request metrics, CORS, the
// Referrer-Policy header, panic recovery and context deadlines for short
// JSON endpoints.
//
// # Middleware Chain
//
// The server assembles the chain outermost first:
//
//	handler = Recovery(RequestID(Logging(Tracing(ReferrerPolicy(CORS(router))))))
//
// Recovery sits outside everything so that a panic anywhere still produces
// a log line. RequestID runs before Logging so that access logs carry the
// request_id attribute through the context-aware slog handler.
//
// # Routes
//
// Logging allocates a route label per request. The router fills it in with
// SetRoute once it knows which template matched, and Logging uses it for
// the requests_total metric. Paths no route handled are labelled
// "unmatched", which keeps metric cardinality bounded.
//
// # Streaming
//
// Media responses stream for as long as the client reads. The wrappers in
// this package implement Unwrap so http.ResponseController can still flush
// and set write deadlines on the underlying connection, and Recovery never
// writes an error envelope into a body that has already started.
package middleware
