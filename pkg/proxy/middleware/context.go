package middleware

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// Context keys for storing values in request context.
const (
	// StartTimeKey stores the request start time for latency calculation.
	StartTimeKey contextKey = "start_time"

	// routeKey stores the *routeLabel filled in by the router.
	routeKey contextKey = "route"
)

// UnmatchedRoute labels requests that no API route handled.
const UnmatchedRoute = "unmatched"

// routeLabel is allocated by LoggingMiddleware and filled in further down
// the chain once the router knows which route matched.
type routeLabel struct {
	name string
}

// SetRoute records the route template for the current request so access
// logs and metrics use a bounded label instead of the raw path.
func SetRoute(ctx context.Context, route string) {
	if l, ok := ctx.Value(routeKey).(*routeLabel); ok {
		l.name = route
	}
}

// GetRoute returns the route recorded with SetRoute, or UnmatchedRoute.
func GetRoute(ctx context.Context) string {
	if l, ok := ctx.Value(routeKey).(*routeLabel); ok && l.name != "" {
		return l.name
	}
	return UnmatchedRoute
}
