package testutil

import (
	"sync"
	"sync/atomic"

	"github.com/arloliu/cqltask/types"
)

// TestMetricsCollector is a test implementation of types.MetricsCollector
// that tracks method calls for assertion in tests.
type TestMetricsCollector struct {
	mu sync.RWMutex

	// Connections
	ConnectTotal  int64
	ConnectErrors int64

	// Queries
	QueryTotal    int64
	QueryErrors   int64
	QueryDuration []float64

	// Results
	RowsReturned   int64
	ServerWarnings int64

	// Atomic counter for quick access
	totalCalls atomic.Int64
}

// Compile-time assertion that TestMetricsCollector implements types.MetricsCollector.
var _ types.MetricsCollector = (*TestMetricsCollector)(nil)

// NewTestMetricsCollector creates a new test metrics collector.
func NewTestMetricsCollector() *TestMetricsCollector {
	return &TestMetricsCollector{}
}

// ----------------------
// Connections
// ----------------------

func (m *TestMetricsCollector) IncConnectTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConnectTotal++
	m.totalCalls.Add(1)
}

func (m *TestMetricsCollector) IncConnectError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConnectErrors++
	m.totalCalls.Add(1)
}

// ----------------------
// Queries
// ----------------------

func (m *TestMetricsCollector) IncQueryTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryTotal++
	m.totalCalls.Add(1)
}

func (m *TestMetricsCollector) IncQueryError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryErrors++
	m.totalCalls.Add(1)
}

func (m *TestMetricsCollector) ObserveQueryDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryDuration = append(m.QueryDuration, seconds)
	m.totalCalls.Add(1)
}

// ----------------------
// Results
// ----------------------

func (m *TestMetricsCollector) AddRowsReturned(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RowsReturned += int64(n)
	m.totalCalls.Add(1)
}

func (m *TestMetricsCollector) AddServerWarnings(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ServerWarnings += int64(n)
	m.totalCalls.Add(1)
}

// ----------------------
// Getters
// ----------------------

// Snapshot is a point-in-time copy of the recorded values.
type Snapshot struct {
	ConnectTotal   int64
	ConnectErrors  int64
	QueryTotal     int64
	QueryErrors    int64
	Observations   int
	RowsReturned   int64
	ServerWarnings int64
}

// Snapshot returns a copy of the recorded values.
func (m *TestMetricsCollector) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		ConnectTotal:   m.ConnectTotal,
		ConnectErrors:  m.ConnectErrors,
		QueryTotal:     m.QueryTotal,
		QueryErrors:    m.QueryErrors,
		Observations:   len(m.QueryDuration),
		RowsReturned:   m.RowsReturned,
		ServerWarnings: m.ServerWarnings,
	}
}

// TotalCalls returns the number of collector calls made so far.
func (m *TestMetricsCollector) TotalCalls() int64 {
	return m.totalCalls.Load()
}

// Reset clears all recorded values.
func (m *TestMetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ConnectTotal = 0
	m.ConnectErrors = 0
	m.QueryTotal = 0
	m.QueryErrors = 0
	m.QueryDuration = nil
	m.RowsReturned = 0
	m.ServerWarnings = 0
	m.totalCalls.Store(0)
}
