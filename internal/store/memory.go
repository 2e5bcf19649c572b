package store

import (
	"sync"
	"time"

	"github.com/aetheriusmc/aethergate/protocol"
)

// MemoryStore is an in-memory implementation of [Store].
//
// Console lines and metric points are kept in separate bounded buffers.
// When a buffer exceeds its limit, the oldest excess is dropped in one
// batch. Metric points are additionally throttled to the recording interval
// so the retained series keeps the cadence the metrics endpoint declares.
type MemoryStore struct {
	consoleLimit int
	metricLimit  int
	metricEvery  time.Duration

	mu           sync.RWMutex
	lines        []protocol.ConsoleLine
	points       []metricEntry
	lastRecorded time.Time
}

// metricEntry pairs a point with its arrival time for window filtering.
type metricEntry struct {
	at    time.Time
	point protocol.MetricPoint
}

// NewMemoryStore creates a new in-memory [Store] implementation.
//
// consoleLimit and metricLimit bound the two buffers; non-positive values
// fall back to 1000 lines and 1440 points (24 hours at one per minute).
// metricEvery throttles metric recording; zero disables throttling.
//
// The store is immediately ready for use. No cleanup is required when done.
func NewMemoryStore(consoleLimit, metricLimit int, metricEvery time.Duration) *MemoryStore {
	if consoleLimit <= 0 {
		consoleLimit = 1000
	}
	if metricLimit <= 0 {
		metricLimit = 1440
	}
	return &MemoryStore{
		consoleLimit: consoleLimit,
		metricLimit:  metricLimit,
		metricEvery:  metricEvery,
	}
}

// AppendConsole stores one console line, dropping the oldest excess past the
// retention limit.
func (m *MemoryStore) AppendConsole(line protocol.ConsoleLine) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lines = append(m.lines, line)
	if len(m.lines) > m.consoleLimit {
		m.lines = m.lines[len(m.lines)-m.consoleLimit:]
	}
}

// ConsoleHistory returns up to limit of the newest retained lines, oldest
// first, along with the total retained count.
//
// The returned slice is a copy; modifications do not affect the store.
func (m *MemoryStore) ConsoleHistory(limit int) ([]protocol.ConsoleLine, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := len(m.lines)
	n := total
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]protocol.ConsoleLine, n)
	copy(out, m.lines[total-n:])
	return out, total
}

// RecordMetric stores one metric point unless one was already recorded
// within the recording interval.
func (m *MemoryStore) RecordMetric(point protocol.MetricPoint) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.lastRecorded.IsZero() && now.Sub(m.lastRecorded) < m.metricEvery {
		return
	}
	m.lastRecorded = now
	m.points = append(m.points, metricEntry{at: now, point: point})
	if len(m.points) > m.metricLimit {
		m.points = m.points[len(m.points)-m.metricLimit:]
	}
}

// Metrics returns the retained points recorded within the trailing window,
// oldest first.
//
// The returned slice is a copy; modifications do not affect the store.
func (m *MemoryStore) Metrics(window time.Duration) []protocol.MetricPoint {
	cutoff := time.Now().Add(-window)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]protocol.MetricPoint, 0, len(m.points))
	for _, e := range m.points {
		if e.at.Before(cutoff) {
			continue
		}
		out = append(out, e.point)
	}
	return out
}
