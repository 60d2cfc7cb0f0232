package tool

import (
	"sync"
	"time"
)

// Metrics tracks execution statistics for one tool.
type Metrics struct {
	mu            sync.Mutex
	Executions    int64
	Failures      int64
	TotalDuration time.Duration
	LastExecuted  time.Time
}

// record updates the counters after one execution.
func (m *Metrics) record(d time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Executions++
	if failed {
		m.Failures++
	}
	m.TotalDuration += d
	m.LastExecuted = time.Now()
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := MetricsSnapshot{
		Executions:   m.Executions,
		Failures:     m.Failures,
		LastExecuted: m.LastExecuted,
	}
	if m.Executions > 0 {
		snap.AvgDuration = m.TotalDuration / time.Duration(m.Executions)
	}
	return snap
}

// MetricsSnapshot is a point-in-time copy of a tool's metrics.
type MetricsSnapshot struct {
	Executions   int64         `json:"executions"`
	Failures     int64         `json:"failures"`
	AvgDuration  time.Duration `json:"avg_duration"`
	LastExecuted time.Time     `json:"last_executed,omitempty"`
}
