package retention

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger/storage"
)

var now = time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

func seedAges(t *testing.T, s ledger.Storage, ages ...time.Duration) {
	t.Helper()
	for i, age := range ages {
		err := s.Store(context.Background(), &ledger.Record{
			ID:          fmt.Sprintf("r%d", i),
			RequestTime: now.Add(-age),
			Outcome:     ledger.OutcomeComplete,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func newPruner(s ledger.Storage, cfg config.RetentionConfig) *Pruner {
	p := NewPruner(s, cfg)
	p.now = func() time.Time { return now }
	return p
}

func TestPruner_ByAge(t *testing.T) {
	s := storage.NewMemoryStorage()
	day := 24 * time.Hour
	seedAges(t, s, 40*day, 31*day, 30*day, 2*day, 0)

	deleted, err := newPruner(s, config.RetentionConfig{Days: 30}).Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
	if s.Size() != 3 {
		t.Errorf("remaining = %d, want 3", s.Size())
	}
}

func TestPruner_ByCount(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedAges(t, s, 5*time.Hour, 4*time.Hour, 3*time.Hour, 2*time.Hour, time.Hour)

	deleted, err := newPruner(s, config.RetentionConfig{MaxRecords: 2}).Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	left, _ := s.Query(context.Background(), &ledger.Query{SortOrder: "asc"})
	if len(left) != 2 || left[0].ID != "r3" || left[1].ID != "r4" {
		t.Errorf("wrong records kept: %+v", left)
	}
}

func TestPruner_Disabled(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedAges(t, s, 1000*24*time.Hour)

	deleted, err := newPruner(s, config.RetentionConfig{}).Prune(context.Background())
	if err != nil || deleted != 0 {
		t.Errorf("Prune() = %d, %v; want 0, nil", deleted, err)
	}
}

func TestScheduler(t *testing.T) {
	p := NewPruner(storage.NewMemoryStorage(), config.RetentionConfig{Days: 30})

	t.Run("empty schedule", func(t *testing.T) {
		s := NewScheduler(p, "")
		if err := s.Start(context.Background()); err != nil {
			t.Fatal(err)
		}
		if s.IsRunning() || s.NextRun() != nil {
			t.Error("scheduler should stay idle without a schedule")
		}
	})

	t.Run("invalid schedule", func(t *testing.T) {
		s := NewScheduler(p, "every day")
		if err := s.Start(context.Background()); err == nil {
			t.Error("expected error for invalid schedule")
		}
	})

	t.Run("start and stop", func(t *testing.T) {
		s := NewScheduler(p, "0 3 * * *")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := s.Start(ctx); err != nil {
			t.Fatal(err)
		}
		if !s.IsRunning() {
			t.Fatal("expected scheduler to run")
		}
		next := s.NextRun()
		if next == nil || next.Hour() != 3 || next.Minute() != 0 {
			t.Errorf("NextRun = %v, want 03:00", next)
		}

		s.Stop()
		if s.IsRunning() {
			t.Error("expected scheduler to stop")
		}
		s.Stop()
	})

	t.Run("stops on context cancel", func(t *testing.T) {
		s := NewScheduler(p, "@hourly")
		ctx, cancel := context.WithCancel(context.Background())
		if err := s.Start(ctx); err != nil {
			t.Fatal(err)
		}
		cancel()

		deadline := time.Now().Add(2 * time.Second)
		for s.IsRunning() && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		if s.IsRunning() {
			t.Error("scheduler still running after cancel")
		}
	})
}
