package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/crucial707/timetable/internal/logger"
	"github.com/crucial707/timetable/internal/metrics"
)

type fakeTotals struct {
	users, entries int64
	err            error
	calls          atomic.Int32
}

func (f *fakeTotals) Totals(ctx context.Context) (int64, int64, error) {
	f.calls.Add(1)
	return f.users, f.entries, f.err
}

func TestRefreshStats(t *testing.T) {
	src := &fakeTotals{users: 4, entries: 9}
	if err := RefreshStats(context.Background(), src, logger.Discard()); err != nil {
		t.Fatalf("RefreshStats: %v", err)
	}
	if got := testutil.ToFloat64(metrics.Users); got != 4 {
		t.Errorf("users gauge: got %v, want 4", got)
	}
	if got := testutil.ToFloat64(metrics.ScheduleEntries); got != 9 {
		t.Errorf("entries gauge: got %v, want 9", got)
	}
}

func TestRefreshStats_Error(t *testing.T) {
	src := &fakeTotals{err: errors.New("db down")}
	if err := RefreshStats(context.Background(), src, logger.Discard()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRun_InvalidSpec(t *testing.T) {
	if err := Run(context.Background(), "not a cron spec", &fakeTotals{}, logger.Discard()); err == nil {
		t.Fatal("expected invalid spec error")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	src := &fakeTotals{users: 1, entries: 1}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, "@every 1h", src, logger.Discard()) }()

	deadline := time.Now().Add(2 * time.Second)
	for src.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if src.calls.Load() == 0 {
		t.Error("expected an initial refresh")
	}
}
