package recorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger/storage"
)

func TestRecorder_WritesAllOnClose(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := New(store, config.RecorderConfig{AsyncBuffer: 100, WriteTimeout: time.Second})

	for i := 0; i < 25; i++ {
		if err := rec.Record(context.Background(), &ledger.Record{
			RequestID:   "req",
			RequestTime: time.Now(),
			Outcome:     ledger.OutcomeComplete,
		}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	rec.Close()

	if store.Size() != 25 {
		t.Fatalf("stored %d records, want 25", store.Size())
	}

	records, _ := store.Query(context.Background(), &ledger.Query{})
	seen := make(map[string]bool)
	for _, r := range records {
		if r.ID == "" {
			t.Fatal("record stored without ID")
		}
		if seen[r.ID] {
			t.Fatalf("duplicate ID %s", r.ID)
		}
		seen[r.ID] = true
		if r.RecordedTime.IsZero() {
			t.Error("RecordedTime not set")
		}
	}
}

func TestRecorder_KeepsExistingID(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := New(store, config.RecorderConfig{})

	if err := rec.Record(context.Background(), &ledger.Record{ID: "fixed"}); err != nil {
		t.Fatal(err)
	}
	rec.Close()

	records, _ := store.Query(context.Background(), &ledger.Query{})
	if len(records) != 1 || records[0].ID != "fixed" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestRecorder_RecordAfterClose(t *testing.T) {
	rec := New(storage.NewMemoryStorage(), config.RecorderConfig{})
	rec.Close()
	rec.Close()

	err := rec.Record(context.Background(), &ledger.Record{})
	var re *ledger.RecorderError
	if !errors.As(err, &re) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled RecorderError, got %v", err)
	}
}

func TestRecorder_Nil(t *testing.T) {
	var rec *Recorder
	if err := rec.Record(context.Background(), &ledger.Record{}); err != nil {
		t.Errorf("nil recorder returned %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Errorf("nil Close returned %v", err)
	}
}

// blockingStorage holds every Store call until release is closed.
type blockingStorage struct {
	*storage.MemoryStorage
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStorage) Store(ctx context.Context, r *ledger.Record) error {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.release
	return b.MemoryStorage.Store(context.Background(), r)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	store := &blockingStorage{
		MemoryStorage: storage.NewMemoryStorage(),
		entered:       make(chan struct{}, 1),
		release:       make(chan struct{}),
	}
	rec := New(store, config.RecorderConfig{AsyncBuffer: 1, WriteTimeout: 50 * time.Millisecond})
	ctx := context.Background()

	if err := rec.Record(ctx, &ledger.Record{ID: "first"}); err != nil {
		t.Fatal(err)
	}
	<-store.entered

	if err := rec.Record(ctx, &ledger.Record{ID: "second"}); err != nil {
		t.Fatalf("buffered record rejected: %v", err)
	}

	err := rec.Record(ctx, &ledger.Record{ID: "third"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}

	close(store.release)
	rec.Close()

	if store.Size() != 2 {
		t.Errorf("stored %d records, want 2", store.Size())
	}
}
