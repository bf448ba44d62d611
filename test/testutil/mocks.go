package testutil

import (
	"context"
	"sync"

	"github.com/arloliu/cqltask/adapter/cql"
)

// MockConnector is a mock implementation of cql.Connector for testing.
type MockConnector struct {
	mu      sync.Mutex
	calls   int
	configs []cql.ConnectConfig
	ctxs    []context.Context

	// Session is returned by Connect. A new MockSession is created when nil.
	Session cql.Session

	// Err is returned by Connect when set.
	Err error
}

// Compile-time assertion that MockConnector implements cql.Connector.
var _ cql.Connector = (*MockConnector)(nil)

// NewMockConnector creates a connector that hands out session.
func NewMockConnector(session cql.Session) *MockConnector {
	return &MockConnector{Session: session}
}

// Connect records the call and returns the configured session or error.
func (m *MockConnector) Connect(ctx context.Context, cfg cql.ConnectConfig) (cql.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.configs = append(m.configs, cfg)
	m.ctxs = append(m.ctxs, ctx)

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Session == nil {
		m.Session = NewMockSession()
	}

	return m.Session, nil
}

// Calls returns the number of Connect calls.
func (m *MockConnector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

// LastConfig returns the configuration passed to the latest Connect call.
func (m *MockConnector) LastConfig() cql.ConnectConfig {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.configs) == 0 {
		return cql.ConnectConfig{}
	}

	return m.configs[len(m.configs)-1]
}

// LastContext returns the context passed to the latest Connect call.
func (m *MockConnector) LastContext() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.ctxs) == 0 {
		return nil
	}

	return m.ctxs[len(m.ctxs)-1]
}

// MockSession is a mock implementation of cql.Session for testing.
type MockSession struct {
	mu      sync.RWMutex
	closed  bool
	queries []*MockQuery
	iter    *MockIter

	// OnQuery overrides query creation when set.
	OnQuery func(stmt string, values ...any) cql.Query
}

// Compile-time assertion that MockSession implements cql.Session.
var _ cql.Session = (*MockSession)(nil)

// NewMockSession creates a session whose queries return no rows.
func NewMockSession() *MockSession {
	return &MockSession{iter: &MockIter{}}
}

// SetIter configures the iterator returned by subsequent queries.
func (m *MockSession) SetIter(iter *MockIter) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.iter = iter
}

// Query returns a mock query for the given statement.
func (m *MockSession) Query(stmt string, values ...any) cql.Query {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.OnQuery != nil {
		return m.OnQuery(stmt, values...)
	}

	q := &MockQuery{stmt: stmt, iter: m.iter}
	m.queries = append(m.queries, q)

	return q
}

// Queries returns the queries created so far.
func (m *MockSession) Queries() []*MockQuery {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]*MockQuery(nil), m.queries...)
}

// Close marks the session as closed.
func (m *MockSession) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
}

// IsClosed returns whether the session has been closed.
func (m *MockSession) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.closed
}

// MockQuery is a mock implementation of cql.Query for testing.
type MockQuery struct {
	mu          sync.RWMutex
	stmt        string
	ctx         context.Context
	consistency cql.Consistency
	pageSize    int
	released    bool
	iter        *MockIter
}

// Compile-time assertion that MockQuery implements cql.Query.
var _ cql.Query = (*MockQuery)(nil)

// Consistency sets the consistency level.
func (m *MockQuery) Consistency(c cql.Consistency) cql.Query {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.consistency = c

	return m
}

// PageSize sets the page size.
func (m *MockQuery) PageSize(n int) cql.Query {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pageSize = n

	return m
}

// IterContext records ctx and returns the configured iterator.
func (m *MockQuery) IterContext(ctx context.Context) cql.Iter {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ctx = ctx
	if m.iter == nil {
		m.iter = &MockIter{}
	}

	return m.iter
}

// Statement returns the query statement.
func (m *MockQuery) Statement() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.stmt
}

// Release marks the query as released.
func (m *MockQuery) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.released = true
}

// GetConsistency returns the configured consistency level.
func (m *MockQuery) GetConsistency() cql.Consistency {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.consistency
}

// GetPageSize returns the configured page size.
func (m *MockQuery) GetPageSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.pageSize
}

// GetContext returns the context passed to IterContext.
func (m *MockQuery) GetContext() context.Context {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.ctx
}

// IsReleased returns whether Release was called.
func (m *MockQuery) IsReleased() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.released
}

// MockIter is a mock implementation of cql.Iter for testing.
type MockIter struct {
	mu     sync.Mutex
	read   bool
	closed bool

	// Rows are returned by SliceMap.
	Rows []map[string]any

	// Cols are returned by Columns.
	Cols []cql.ColumnInfo

	// FirstPageWarnings are reported from the start.
	FirstPageWarnings []string

	// LaterPageWarnings are added to Warnings once SliceMap has run.
	LaterPageWarnings []string

	// Err is returned by SliceMap.
	Err error

	// CloseErr is returned by Close.
	CloseErr error
}

// Compile-time assertion that MockIter implements cql.Iter.
var _ cql.Iter = (*MockIter)(nil)

// SliceMap returns Rows, or Err when set.
func (m *MockIter) SliceMap() ([]map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.read = true
	if m.Err != nil {
		return nil, m.Err
	}

	return m.Rows, nil
}

// Columns returns Cols.
func (m *MockIter) Columns() []cql.ColumnInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Cols
}

// Warnings returns the warnings visible at this point of iteration.
func (m *MockIter) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.read {
		return m.FirstPageWarnings
	}

	return append(append([]string(nil), m.FirstPageWarnings...), m.LaterPageWarnings...)
}

// Close marks the iterator as closed and returns CloseErr.
func (m *MockIter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return m.CloseErr
}

// IsClosed returns whether Close was called.
func (m *MockIter) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}

// Columns builds column metadata for the given names.
func Columns(keyspace, table string, names ...string) []cql.ColumnInfo {
	cols := make([]cql.ColumnInfo, len(names))
	for i, name := range names {
		cols[i] = cql.ColumnInfo{Keyspace: keyspace, Table: table, Name: name}
	}

	return cols
}
