package ledger

import (
	"errors"
	"fmt"
)

const (
	// DefaultLimit is the default number of records to return if not specified.
	DefaultLimit = 100

	// MaxLimit is the maximum number of records that can be returned in a single query.
	MaxLimit = 10000
)

// ValidSortFields contains the fields that can be used for sorting.
var ValidSortFields = map[string]bool{
	"request_time": true,
	"bytes_sent":   true,
	"duration":     true,
}

// ValidOutcomes contains the values accepted by Query.Outcome.
var ValidOutcomes = map[string]bool{
	OutcomeComplete:   true,
	OutcomeClientGone: true,
	OutcomeAborted:    true,
	OutcomeRejected:   true,
}

// Validate returns a *QueryError if any parameter of q is invalid.
func Validate(q *Query) error {
	if q.Limit < 0 {
		return NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}
	if q.SortBy != "" && !ValidSortFields[q.SortBy] {
		return NewQueryError(q, fmt.Errorf("invalid sort field: %s", q.SortBy))
	}
	if q.SortOrder != "" && q.SortOrder != "asc" && q.SortOrder != "desc" {
		return NewQueryError(q, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}
	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return NewQueryError(q, errors.New("start_time must be before end_time"))
	}
	if q.Outcome != "" && !ValidOutcomes[q.Outcome] {
		return NewQueryError(q, fmt.Errorf("invalid outcome: %s", q.Outcome))
	}
	if q.Status != 0 && (q.Status < 100 || q.Status > 599) {
		return NewQueryError(q, fmt.Errorf("invalid status: %d", q.Status))
	}
	return nil
}

// ApplyDefaults fills in limit and sorting.
func ApplyDefaults(q *Query) {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = "request_time"
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}

// Matches reports whether r passes the filters of q. Pagination and
// sorting are ignored. Storage backends without a query language use it.
func (q *Query) Matches(r *Record) bool {
	if q.StartTime != nil && r.RequestTime.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && r.RequestTime.After(*q.EndTime) {
		return false
	}
	if q.Route != "" && r.Route != q.Route {
		return false
	}
	if q.ClientID != nil && r.ClientID != *q.ClientID {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	if q.Status != 0 && r.Status != q.Status {
		return false
	}
	return true
}
