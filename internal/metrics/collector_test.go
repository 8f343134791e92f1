package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestObserveAggregates(t *testing.T) {
	c := NewCollector()

	c.Observe(OpProcess, 10*time.Millisecond, false)
	c.Observe(OpProcess, 30*time.Millisecond, true)
	c.Observe(OpProcess, 20*time.Millisecond, false)

	snap := c.Snapshot()
	op, ok := snap.Operations[OpProcess]
	if !ok {
		t.Fatal("missing process operation in snapshot")
	}

	if op.Count != 3 {
		t.Errorf("Count = %d, want 3", op.Count)
	}
	if op.Failures != 1 {
		t.Errorf("Failures = %d, want 1", op.Failures)
	}
	if op.MinMs != 10 || op.MaxMs != 30 {
		t.Errorf("min/max = %d/%d, want 10/30", op.MinMs, op.MaxMs)
	}
	if op.AvgMs != 20 {
		t.Errorf("AvgMs = %v, want 20", op.AvgMs)
	}
}

func TestTimeRecordsFailure(t *testing.T) {
	c := NewCollector()

	wantErr := errors.New("boom")
	err := c.Time(OpEmbedding, func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("Time() error = %v, want %v", err, wantErr)
	}

	op := c.Snapshot().Operations[OpEmbedding]
	if op.Count != 1 || op.Failures != 1 {
		t.Errorf("count/failures = %d/%d, want 1/1", op.Count, op.Failures)
	}
}

func TestSnapshotEmptyCollector(t *testing.T) {
	c := NewCollector()
	snap := c.Snapshot()
	if len(snap.Operations) != 0 {
		t.Errorf("Operations = %v, want empty", snap.Operations)
	}
	if snap.UptimeSeconds < 0 {
		t.Errorf("UptimeSeconds = %v, want non-negative", snap.UptimeSeconds)
	}
}

func TestConcurrentObserve(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Observe(OpChat, time.Millisecond, false)
		}()
	}
	wg.Wait()

	if got := c.Snapshot().Operations[OpChat].Count; got != 50 {
		t.Errorf("Count = %d, want 50", got)
	}
}
