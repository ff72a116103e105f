package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"
)

// MemoryStorage keeps records in a slice. Intended for tests and for
// deployments that do not need records to survive a restart.
type MemoryStorage struct {
	records []*ledger.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make([]*ledger.Record, 0),
	}
}

// Store appends a copy of record.
func (s *MemoryStorage) Store(ctx context.Context, record *ledger.Record) error {
	if err := ctx.Err(); err != nil {
		return ledger.NewStorageError("memory", "store", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *record
	s.records = append(s.records, &cp)
	return nil
}

// Query returns matching records sorted and paginated per query.
func (s *MemoryStorage) Query(ctx context.Context, query *ledger.Query) ([]*ledger.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, ledger.NewStorageError("memory", "query", err)
	}

	s.mu.RLock()
	matched := make([]*ledger.Record, 0)
	for _, r := range s.records {
		if query.Matches(r) {
			cp := *r
			matched = append(matched, &cp)
		}
	}
	s.mu.RUnlock()

	sortRecords(matched, query.SortBy, query.SortOrder)

	if query.Offset > 0 {
		if query.Offset >= len(matched) {
			return []*ledger.Record{}, nil
		}
		matched = matched[query.Offset:]
	}
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, query *ledger.Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, ledger.NewStorageError("memory", "count", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.records {
		if query.Matches(r) {
			n++
		}
	}
	return n, nil
}

// Delete removes matching records.
func (s *MemoryStorage) Delete(ctx context.Context, query *ledger.Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, ledger.NewStorageError("memory", "delete", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, r := range s.records {
		if query.Matches(r) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return deleted, nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error {
	return nil
}

// Size returns the number of stored records.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func sortRecords(records []*ledger.Record, sortBy, order string) {
	less := func(a, b *ledger.Record) bool {
		switch sortBy {
		case "bytes_sent":
			return a.BytesSent < b.BytesSent
		case "duration":
			return a.Duration < b.Duration
		default:
			return a.RequestTime.Before(b.RequestTime)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if order == "asc" {
			return less(records[i], records[j])
		}
		return less(records[j], records[i])
	})
}
