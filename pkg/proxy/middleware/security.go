package middleware

import "net/http"

// ReferrerPolicyMiddleware sets the Referrer-Policy header on every
// response. An empty policy disables the header.
func ReferrerPolicyMiddleware(policy string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if policy == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", policy)
			next.ServeHTTP(w, r)
		})
	}
}
