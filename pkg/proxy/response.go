package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Meijaisharma/PathshalaPro/pkg/proxy/types"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer.
// It sets the appropriate content-type header and handles marshaling errors.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes the JSON error envelope with the status code
// implied by its type.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	statusCode := errResp.Error.HTTPStatusCode()
	return WriteJSONResponse(w, statusCode, errResp)
}

// WriteFault writes f as a JSON error. Headers describing a media body
// are dropped first so the envelope is not mistaken for media.
func WriteFault(w http.ResponseWriter, f Fault) error {
	h := w.Header()
	h.Del("Content-Length")
	h.Del("Content-Disposition")
	if f.Status != http.StatusRequestedRangeNotSatisfiable {
		h.Del("Content-Range")
	}
	return WriteJSONResponse(w, f.Status, f.Response())
}
