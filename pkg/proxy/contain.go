package proxy

import (
	"log/slog"
	"net/http"

	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/metrics"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/tracing"
)

// Committer reports whether response headers have been sent.
// *transfer.Sink implements it.
type Committer interface {
	Committed() bool
}

// Containment turns pipeline errors into responses without ever writing
// to a response that already carries media bytes.
type Containment struct {
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewContainment returns a Containment. collector may be nil.
func NewContainment(collector *metrics.Collector) *Containment {
	return &Containment{
		metrics: collector,
		logger:  slog.Default().With("component", "containment"),
	}
}

// Contain handles err for the request r served on route. sink may be nil
// when the failure happened before a transfer was set up.
//
// Before commit the client gets a JSON error with the classified status.
// After commit nothing more is written: the body simply ends short, the
// failure is logged at warn and counted as a mid-stream abort.
func (c *Containment) Contain(w http.ResponseWriter, r *http.Request, route string, sink Committer, err error) Fault {
	ctx := r.Context()
	fault := Classify(err)
	tracing.SetError(tracing.SpanFromContext(ctx), err)

	if sink != nil && sink.Committed() {
		c.logger.WarnContext(ctx, "stream aborted after headers were sent",
			"route", route,
			"reason", fault.Reason,
			"error", err,
		)
		c.metrics.RecordMidStreamAbort(route, fault.Reason)
		return fault
	}

	if ctx.Err() != nil {
		c.logger.DebugContext(ctx, "client went away before response",
			"route", route,
			"error", err,
		)
		return fault
	}

	if fault.Status >= http.StatusInternalServerError {
		c.logger.WarnContext(ctx, "request failed",
			"route", route,
			"status", fault.Status,
			"error", err,
		)
	} else {
		c.logger.DebugContext(ctx, "request rejected",
			"route", route,
			"status", fault.Status,
			"error", err,
		)
	}

	if werr := WriteFault(w, fault); werr != nil {
		c.logger.DebugContext(ctx, "failed to write error response", "error", werr)
	}
	return fault
}
