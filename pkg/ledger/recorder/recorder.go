// Package recorder writes ledger records asynchronously so that storage
// latency never reaches the media path.
package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"

	"github.com/google/uuid"
)

// Recorder queues records on a buffered channel and writes them from a
// single background worker. A nil *Recorder accepts and discards records.
type Recorder struct {
	storage    ledger.Storage
	config     config.RecorderConfig
	recordChan chan *ledger.Record
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	logger     *slog.Logger
}

// New creates a recorder writing to storage and starts its worker.
func New(storage ledger.Storage, cfg config.RecorderConfig) *Recorder {
	if cfg.AsyncBuffer <= 0 {
		cfg.AsyncBuffer = 1000
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage:    storage,
		config:     cfg,
		recordChan: make(chan *ledger.Record, cfg.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "ledger.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("ledger recorder initialized",
		"async_buffer", cfg.AsyncBuffer,
		"write_timeout", cfg.WriteTimeout,
	)

	return r
}

// Record enqueues record for writing. It assigns an ID if the record has
// none. When the buffer stays full for WriteTimeout the record is dropped
// and a *ledger.RecorderError is returned.
func (r *Recorder) Record(ctx context.Context, record *ledger.Record) error {
	if r == nil || record == nil {
		return nil
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	select {
	case <-r.done:
		return ledger.NewRecorderError(record.ID, context.Canceled)
	default:
	}

	select {
	case r.recordChan <- record:
		return nil
	case <-time.After(r.config.WriteTimeout):
		r.logger.Error("ledger channel full, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return ledger.NewRecorderError(record.ID, context.DeadlineExceeded)
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
		)
		return ledger.NewRecorderError(record.ID, context.Canceled)
	}
}

// Close stops accepting records, drains the queue and waits for pending
// writes. It is safe to call more than once.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.closeOnce.Do(func() {
		r.logger.Info("shutting down ledger recorder")
		close(r.done)
		r.wg.Wait()
		r.logger.Info("ledger recorder shut down complete")
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			r.logger.Debug("draining ledger channel before shutdown",
				"pending_count", len(r.recordChan),
			)
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) writeRecord(record *ledger.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	record.RecordedTime = start

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store ledger record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)
	r.logger.Debug("ledger record written",
		"record_id", record.ID,
		"request_id", record.RequestID,
		"outcome", record.Outcome,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow ledger write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
