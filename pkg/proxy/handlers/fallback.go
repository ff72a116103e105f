package handlers

import (
	"fmt"
	"net/http"

	"github.com/Meijaisharma/PathshalaPro/pkg/proxy"
	"github.com/Meijaisharma/PathshalaPro/pkg/proxy/types"
)

// NotFoundHandler answers requests that match no route and no static file.
type NotFoundHandler struct{}

// ServeHTTP implements the http.Handler interface.
func (NotFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	proxy.WriteErrorResponse(w, types.NewErrorResponse(
		"Not found",
		types.ErrorTypeNotFound,
		types.CodeContentNotFound,
	))
}

// MethodNotAllowedHandler answers a known route called with the wrong
// method.
type MethodNotAllowedHandler struct{}

// ServeHTTP implements the http.Handler interface.
func (MethodNotAllowedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	proxy.WriteErrorResponse(w, types.NewErrorResponse(
		fmt.Sprintf("Method %s not allowed", r.Method),
		types.ErrorTypeMethodNotAllowed,
		types.CodeMethodNotAllowed,
	))
}
