// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"sync"
	"time"
)

// Operation names recorded by the collector.
const (
	OpProcess     = "process"
	OpFileLoad    = "file_load"
	OpRemediate   = "remediate"
	OpEmbedding   = "embedding"
	OpMemoryAdd   = "memory_add"
	OpMemoryQuery = "memory_query"
	OpLLMGenerate = "llm_generate"
	OpChat        = "chat"
)

// opStats holds raw aggregates for one operation.
type opStats struct {
	count    int64
	total    time.Duration
	min      time.Duration
	max      time.Duration
	failures int64
}

// OpSnapshot provides computed stats for one operation.
type OpSnapshot struct {
	Count     int64   `json:"count"`
	Failures  int64   `json:"failures"`
	TotalMs   int64   `json:"total_ms"`
	AvgMs     float64 `json:"avg_ms"`
	MinMs     int64   `json:"min_ms"`
	MaxMs     int64   `json:"max_ms"`
}

// Snapshot is the full statistics view at a point in time.
type Snapshot struct {
	UptimeSeconds float64               `json:"uptime_seconds"`
	Operations    map[string]OpSnapshot `json:"operations"`
}

// Collector aggregates in-memory runtime statistics. All methods are safe
// for concurrent use.
type Collector struct {
	mu        sync.Mutex
	startTime time.Time
	ops       map[string]*opStats
}

// NewCollector creates a collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*opStats),
	}
}

// Observe records one completed operation.
func (c *Collector) Observe(op string, d time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.ops[op]
	if !ok {
		s = &opStats{min: d, max: d}
		c.ops[op] = s
	}
	s.count++
	s.total += d
	if failed {
		s.failures++
	}
	if d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
}

// Time runs fn, recording its duration and failure state under op.
func (c *Collector) Time(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	c.Observe(op, time.Since(start), err != nil)
	return err
}

// Snapshot returns the current statistics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Operations:    make(map[string]OpSnapshot, len(c.ops)),
	}
	for op, s := range c.ops {
		snap := OpSnapshot{
			Count:    s.count,
			Failures: s.failures,
			TotalMs:  s.total.Milliseconds(),
			MinMs:    s.min.Milliseconds(),
			MaxMs:    s.max.Milliseconds(),
		}
		if s.count > 0 {
			snap.AvgMs = float64(s.total.Milliseconds()) / float64(s.count)
		}
		out.Operations[op] = snap
	}
	return out
}
