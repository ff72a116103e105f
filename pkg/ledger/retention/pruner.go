// Package retention removes old ledger records, either on demand or on a
// cron schedule.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"
)

// Pruner enforces the retention policy on a ledger storage backend.
type Pruner struct {
	storage ledger.Storage
	config  config.RetentionConfig
	logger  *slog.Logger

	// now is replaced in tests.
	now func() time.Time
}

// NewPruner creates a pruner for storage.
func NewPruner(storage ledger.Storage, cfg config.RetentionConfig) *Pruner {
	return &Pruner{
		storage: storage,
		config:  cfg,
		logger:  slog.Default().With("component", "ledger.retention"),
		now:     time.Now,
	}
}

// Prune deletes records older than the retention period, then the oldest
// records beyond MaxRecords. It returns the total number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.Days > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return total, err
		}
		total += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return total, err
		}
		total += deleted
	}

	if total > 0 {
		p.logger.Info("ledger pruning completed",
			"total_deleted", total,
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Debug("no records pruned")
	}

	return total, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	// Records exactly at the cutoff are kept.
	cutoff := p.now().AddDate(0, 0, -p.config.Days).Add(-time.Nanosecond)

	deleted, err := p.storage.Delete(ctx, &ledger.Query{EndTime: &cutoff})
	if err != nil {
		return 0, ledger.NewRetentionError(p.config.Days, err)
	}
	return deleted, nil
}

func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &ledger.Query{})
	if err != nil {
		return 0, ledger.NewRetentionError(p.config.Days, fmt.Errorf("count records: %w", err))
	}
	excess := count - p.config.MaxRecords
	if excess <= 0 {
		return 0, nil
	}

	// The newest record that has to go sets the cutoff. Records sharing
	// its timestamp go with it.
	oldest, err := p.storage.Query(ctx, &ledger.Query{
		Limit:     1,
		Offset:    int(excess - 1),
		SortBy:    "request_time",
		SortOrder: "asc",
	})
	if err != nil {
		return 0, ledger.NewRetentionError(p.config.Days, fmt.Errorf("find cutoff: %w", err))
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	cutoff := oldest[0].RequestTime
	deleted, err := p.storage.Delete(ctx, &ledger.Query{EndTime: &cutoff})
	if err != nil {
		return 0, ledger.NewRetentionError(p.config.Days, err)
	}
	return deleted, nil
}
