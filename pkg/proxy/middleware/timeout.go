package middleware

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware attaches a deadline to the request context. It is meant
// for short JSON endpoints; media routes stream for as long as the client
// keeps reading and must not be wrapped.
//
// Handlers observe the deadline through ctx.Done() and decide themselves
// what to answer, so nothing is written here.
//
// Example usage:
//
//	router.Handle("/api/meta/{id}", TimeoutMiddleware(5*time.Second)(metaHandler))
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
