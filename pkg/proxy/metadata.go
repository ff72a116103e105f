package proxy

import (
	"net/http"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"
	"github.com/Meijaisharma/PathshalaPro/pkg/proxy/middleware"
	"github.com/Meijaisharma/PathshalaPro/pkg/ranges"
	"github.com/Meijaisharma/PathshalaPro/pkg/telemetry/logging"
	"github.com/Meijaisharma/PathshalaPro/pkg/transfer"
)

// PlaybackMetadata accumulates what a media handler learns about a request
// as it moves through resolution, negotiation and transfer. It is turned
// into a ledger record once the response is finished.
type PlaybackMetadata struct {
	// RequestID is the unique identifier for the request.
	RequestID string

	// Route is the route template that served the request.
	Route string

	// Method is the HTTP method (GET or HEAD).
	Method string

	// RemoteAddr is the client's address.
	RemoteAddr string

	// Timestamp is when the request was received.
	Timestamp time.Time

	// ClientID and MessageID are zero until the identifier is resolved.
	ClientID  int64
	MessageID int64

	// RangeStart and RangeEnd are the served window, -1 when none was
	// negotiated.
	RangeStart int64
	RangeEnd   int64
	TotalSize  int64

	// StatusCode is the HTTP status sent to the client.
	StatusCode int

	// BytesSent counts body bytes delivered.
	BytesSent int64

	// Strategy is empty when no transfer ran.
	Strategy string

	// Outcome is one of the ledger outcomes.
	Outcome string

	// Error contains any error that occurred.
	Error error
}

// ExtractPlaybackMetadata starts the metadata for a media request. The
// timestamp is the one LoggingMiddleware stamped on the request, so ledger
// durations match the access log.
func ExtractPlaybackMetadata(r *http.Request, route string) *PlaybackMetadata {
	received := middleware.GetStartTime(r.Context())
	if received.IsZero() {
		received = time.Now()
	}
	return &PlaybackMetadata{
		RequestID:  logging.GetRequestID(r.Context()),
		Route:      route,
		Method:     r.Method,
		RemoteAddr: r.RemoteAddr,
		Timestamp:  received,
		RangeStart: -1,
		RangeEnd:   -1,
	}
}

// SetContent records the resolved identifiers.
func (m *PlaybackMetadata) SetContent(req transfer.Request) {
	m.ClientID = req.ClientID
	m.MessageID = req.MessageID
}

// SetWindow records the negotiated window.
func (m *PlaybackMetadata) SetWindow(d ranges.Decision) {
	m.TotalSize = d.Total
	m.StatusCode = d.Status
	if d.Satisfiable && d.Length > 0 {
		m.RangeStart = d.Start
		m.RangeEnd = d.End
	}
}

// Complete records a response that ended without an error.
func (m *PlaybackMetadata) Complete(status int, res transfer.Result, outcome string) {
	m.StatusCode = status
	m.BytesSent = res.BytesWritten
	m.Strategy = string(res.Strategy)
	m.Outcome = outcome
}

// Fail records a failed request. A committed response keeps its media
// status and counts as aborted; otherwise the fault status was sent and
// the request counts as rejected.
func (m *PlaybackMetadata) Fail(f Fault, committed bool, res transfer.Result, err error) {
	m.Error = err
	m.BytesSent = res.BytesWritten
	m.Strategy = string(res.Strategy)
	if committed {
		m.Outcome = ledger.OutcomeAborted
		return
	}
	m.StatusCode = f.Status
	m.Outcome = ledger.OutcomeRejected
}

// IsSuccess returns true if the client got the whole window it asked for.
func (m *PlaybackMetadata) IsSuccess() bool {
	return m.Outcome == ledger.OutcomeComplete
}

// Record converts the metadata into a ledger record.
func (m *PlaybackMetadata) Record() *ledger.Record {
	rec := &ledger.Record{
		RequestID:   m.RequestID,
		RequestTime: m.Timestamp,
		Route:       m.Route,
		Method:      m.Method,
		RemoteAddr:  m.RemoteAddr,
		ClientID:    m.ClientID,
		MessageID:   m.MessageID,
		RangeStart:  m.RangeStart,
		RangeEnd:    m.RangeEnd,
		TotalSize:   m.TotalSize,
		Status:      m.StatusCode,
		BytesSent:   m.BytesSent,
		Strategy:    m.Strategy,
		Outcome:     m.Outcome,
		Duration:    time.Since(m.Timestamp),
	}
	if m.Error != nil {
		rec.Error = m.Error.Error()
	}
	return rec
}
