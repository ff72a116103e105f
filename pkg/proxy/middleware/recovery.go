package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Meijaisharma/PathshalaPro/pkg/proxy/types"
)

// RecoveryMiddleware recovers from panics in HTTP handlers. If nothing has
// been sent yet the client gets a 500 in the JSON error format. If a media
// body is already streaming, the panic is turned into http.ErrAbortHandler
// so net/http drops the connection instead of ending the body cleanly,
// which a chunked response would otherwise do. The panic is logged with a
// stack trace but never exposed to clients.
//
// http.ErrAbortHandler raised by the handler is passed through unchanged.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newResponseWriter(w)

		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			slog.ErrorContext(r.Context(), "panic in handler",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
				"committed", rw.written,
				"stack", string(debug.Stack()),
			)

			if rw.written {
				panic(http.ErrAbortHandler)
			}

			errResp := types.NewServerError("internal error")
			w.Header().Del("Content-Length")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(errResp)
		}()

		next.ServeHTTP(rw, r)
	})
}
