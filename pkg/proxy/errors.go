package proxy

import (
	"errors"
	"net/http"

	"github.com/Meijaisharma/PathshalaPro/pkg/locator"
	"github.com/Meijaisharma/PathshalaPro/pkg/proxy/types"
	"github.com/Meijaisharma/PathshalaPro/pkg/ranges"
	"github.com/Meijaisharma/PathshalaPro/pkg/resolver"
	"github.com/Meijaisharma/PathshalaPro/pkg/session"
	"github.com/Meijaisharma/PathshalaPro/pkg/transfer"
)

// Abort reasons reported for failures after headers were sent.
const (
	ReasonBackend  = "backend"
	ReasonStall    = "stall"
	ReasonInternal = "internal"
)

// Fault is the client-facing form of an error.
type Fault struct {
	// Status is the HTTP status code sent when headers are not yet committed.
	Status int

	// Type and Code are copied into the JSON error envelope.
	Type string
	Code string

	// Message is short and safe to show to clients.
	Message string

	// Reason labels the fault in logs and metrics.
	Reason string
}

// Response returns the JSON envelope for f.
func (f Fault) Response() *types.ErrorResponse {
	return types.NewErrorResponse(f.Message, f.Type, f.Code)
}

// Classify maps an error from the request pipeline onto a Fault. Backend
// details stay in the logs; clients only get the short message.
//
// Mapping:
//   - resolver.ErrBadIdentifier: 400
//   - locator.ErrNotFound: 404
//   - ranges.ErrUnsatisfiable: 416
//   - *session.ConnectionError, locator.ErrUnavailable, *transfer.TransferError: 502
//   - anything else: 500
func Classify(err error) Fault {
	var (
		connErr     *session.ConnectionError
		transferErr *transfer.TransferError
	)

	switch {
	case errors.Is(err, resolver.ErrBadIdentifier):
		return Fault{
			Status:  http.StatusBadRequest,
			Type:    types.ErrorTypeInvalidRequest,
			Code:    types.CodeBadIdentifier,
			Message: "invalid content identifier",
		}
	case errors.Is(err, locator.ErrNotFound):
		return Fault{
			Status:  http.StatusNotFound,
			Type:    types.ErrorTypeNotFound,
			Code:    types.CodeContentNotFound,
			Message: "content not found",
		}
	case errors.Is(err, ranges.ErrUnsatisfiable):
		return Fault{
			Status:  http.StatusRequestedRangeNotSatisfiable,
			Type:    types.ErrorTypeRangeNotSatisfiable,
			Code:    types.CodeRangeNotSatisfiable,
			Message: "requested range not satisfiable",
		}
	case errors.As(err, &transferErr):
		reason := ReasonBackend
		if transferErr.Op == "stall" {
			reason = ReasonStall
		}
		return Fault{
			Status:  http.StatusBadGateway,
			Type:    types.ErrorTypeBadGateway,
			Code:    types.CodeTransferFailed,
			Message: "media transfer failed",
			Reason:  reason,
		}
	case errors.As(err, &connErr), errors.Is(err, locator.ErrUnavailable):
		return Fault{
			Status:  http.StatusBadGateway,
			Type:    types.ErrorTypeBadGateway,
			Code:    types.CodeBackendUnavailable,
			Message: "media backend unavailable",
			Reason:  ReasonBackend,
		}
	default:
		return Fault{
			Status:  http.StatusInternalServerError,
			Type:    types.ErrorTypeServerError,
			Code:    types.CodeInternalError,
			Message: "internal error",
			Reason:  ReasonInternal,
		}
	}
}
