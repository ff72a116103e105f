package ledger

import (
	"context"
	"time"
)

// Outcomes stored in Record.Outcome. The transfer outcomes are shared with
// the stream metrics; OutcomeRejected marks requests answered with an error
// before any media byte was sent.
const (
	OutcomeComplete   = "complete"
	OutcomeClientGone = "client_gone"
	OutcomeAborted    = "aborted"
	OutcomeRejected   = "rejected"
)

// Record is one media request as seen by the relay.
type Record struct {
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // X-Request-ID

	RequestTime  time.Time `json:"request_time"`  // When the request arrived
	RecordedTime time.Time `json:"recorded_time"` // When the record was written

	Route      string `json:"route"`       // Route template, e.g. /api/video/{id}
	Method     string `json:"method"`      // GET or HEAD
	RemoteAddr string `json:"remote_addr"` // Client address

	ClientID  int64 `json:"client_id"`  // Identifier from the URL
	MessageID int64 `json:"message_id"` // Resolved backend message ID

	RangeStart int64 `json:"range_start"` // First byte served, -1 if none
	RangeEnd   int64 `json:"range_end"`   // Last byte served, -1 if none
	TotalSize  int64 `json:"total_size"`  // Media size, 0 if unknown

	Status    int           `json:"status"`     // HTTP status sent
	BytesSent int64         `json:"bytes_sent"` // Body bytes delivered
	Strategy  string        `json:"strategy"`   // chunked or bulk, empty if no transfer ran
	Outcome   string        `json:"outcome"`    // See Outcome* constants
	Duration  time.Duration `json:"duration"`   // Time from request to end of response

	Error string `json:"error,omitempty"` // Failure cause, never shown to clients
}

// Query filters ledger records.
type Query struct {
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	Route    string `json:"route,omitempty"`     // Filter by route template
	ClientID *int64 `json:"client_id,omitempty"` // Filter by client ID
	Outcome  string `json:"outcome,omitempty"`   // Filter by outcome
	Status   int    `json:"status,omitempty"`    // Filter by HTTP status

	Limit  int `json:"limit,omitempty"`  // Max records to return
	Offset int `json:"offset,omitempty"` // Skip N records

	SortBy    string `json:"sort_by,omitempty"`    // "request_time", "bytes_sent", "duration"
	SortOrder string `json:"sort_order,omitempty"` // "asc", "desc"
}

// Storage defines the interface for ledger storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query returns records matching the filters. An empty slice means no
	// match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the filters and returns how many were
	// removed. Used by retention.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}
