package cqltask

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/arloliu/cqltask/adapter/cql"
	"github.com/arloliu/cqltask/test/testutil"
	"github.com/arloliu/cqltask/types"
)

const aggregationWarning = "Aggregation query used without partition key"

func validInput(query string) Input {
	return Input{
		ContactPoints: []string{"127.0.0.1"},
		Port:          9042,
		Query:         query,
	}
}

func newTestExecutor(t *testing.T, connector cql.Connector, opts ...Option) *Executor {
	t.Helper()

	opts = append([]Option{WithConnector(connector)}, opts...)
	executor, err := NewExecutor(opts...)
	require.NoError(t, err)

	return executor
}

// recordingLogger captures log calls by level.
type recordingLogger struct {
	mu      sync.Mutex
	entries map[string][]logEntry
}

type logEntry struct {
	msg    string
	fields map[string]any
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{entries: make(map[string][]logEntry)}
}

func (l *recordingLogger) record(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := logEntry{msg: msg, fields: make(map[string]any, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		entry.fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	l.entries[level] = append(l.entries[level], entry)
}

func (l *recordingLogger) all() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []logEntry
	for _, level := range []string{"debug", "info", "warn", "error"} {
		out = append(out, l.entries[level]...)
	}

	return out
}

func (l *recordingLogger) Debug(msg string, kv ...any) { l.record("debug", msg, kv) }
func (l *recordingLogger) Info(msg string, kv ...any)  { l.record("info", msg, kv) }
func (l *recordingLogger) Warn(msg string, kv ...any)  { l.record("warn", msg, kv) }
func (l *recordingLogger) Error(msg string, kv ...any) { l.record("error", msg, kv) }

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries[level])
}

func TestNewExecutorNilConnector(t *testing.T) {
	executor, err := NewExecutor(WithConnector(nil))
	require.ErrorIs(t, err, types.ErrNilConnector)
	require.Nil(t, executor)
}

func TestNewExecutorFillsNilDependencies(t *testing.T) {
	executor, err := NewExecutor(
		WithConnector(testutil.NewMockConnector(nil)),
		WithLogger(nil),
		WithMetrics(nil),
		WithIDGenerator(nil),
	)
	require.NoError(t, err)
	require.NotNil(t, executor.config.Logger)
	require.NotNil(t, executor.config.Metrics)
	require.NotNil(t, executor.config.IDGenerator)
}

func TestExecuteInvalidInputNeverConnects(t *testing.T) {
	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{
			name:    "no contact points",
			input:   Input{Port: 9042, Query: "SELECT * FROM t"},
			wantErr: types.ErrNoContactPoints,
		},
		{
			name:    "blank contact points",
			input:   Input{ContactPoints: []string{" ", ""}, Query: "SELECT * FROM t"},
			wantErr: types.ErrNoContactPoints,
		},
		{
			name:    "negative port",
			input:   Input{ContactPoints: []string{"127.0.0.1"}, Port: -1, Query: "SELECT * FROM t"},
			wantErr: types.ErrInvalidPort,
		},
		{
			name:    "port out of range",
			input:   Input{ContactPoints: []string{"127.0.0.1"}, Port: 70000, Query: "SELECT * FROM t"},
			wantErr: types.ErrInvalidPort,
		},
		{
			name:    "empty query",
			input:   Input{ContactPoints: []string{"127.0.0.1"}, Query: "  \n\t"},
			wantErr: types.ErrEmptyQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connector := testutil.NewMockConnector(nil)
			executor := newTestExecutor(t, connector)

			result, err := executor.Execute(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, result)
			require.Zero(t, connector.Calls())
		})
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	connector := testutil.NewMockConnector(nil)
	executor := newTestExecutor(t, connector)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := executor.Execute(ctx, validInput("SELECT * FROM store.shopping_cart;"))
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, result)
	require.Zero(t, connector.Calls())
}

func TestExecuteConnectConfig(t *testing.T) {
	connector := testutil.NewMockConnector(nil)
	executor := newTestExecutor(t, connector,
		WithConsistency(LocalOne),
		WithTimeout(3*time.Second),
		WithConnectTimeout(7*time.Second),
		WithCredentials("cassandra", "secret"),
	)

	_, err := executor.Execute(context.Background(), Input{
		ContactPoints: []string{" 10.0.0.1 ", "", "10.0.0.2"},
		Keyspace:      "store",
		Query:         "SELECT * FROM shopping_cart",
	})
	require.NoError(t, err)

	cfg := connector.LastConfig()
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.ContactPoints)
	assert.Equal(t, types.DefaultPort, cfg.Port)
	assert.Equal(t, "store", cfg.Keyspace)
	assert.Equal(t, LocalOne, cfg.Consistency)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 7*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, Credentials{Username: "cassandra", Password: "secret"}, cfg.Credentials)
}

func TestExecuteQueryTextIsVerbatim(t *testing.T) {
	stmt := "  INSERT INTO store.shopping_cart (userid, item_count)\n\tVALUES ('4567', 20);  "

	session := testutil.NewMockSession()
	executor := newTestExecutor(t, testutil.NewMockConnector(session), WithPageSize(100))

	_, err := executor.Execute(context.Background(), validInput(stmt))
	require.NoError(t, err)

	queries := session.Queries()
	require.Len(t, queries, 1)
	assert.Equal(t, stmt, queries[0].Statement())
	assert.Equal(t, Quorum, queries[0].GetConsistency())
	assert.Equal(t, 100, queries[0].GetPageSize())
	assert.True(t, queries[0].IsReleased())
	assert.NotNil(t, queries[0].GetContext())
}

func TestExecuteInsertReturnsEmptyResult(t *testing.T) {
	session := testutil.NewMockSession()
	executor := newTestExecutor(t, testutil.NewMockConnector(session),
		WithIDGenerator(func() string { return "exec-1" }),
	)

	result, err := executor.Execute(context.Background(),
		validInput("INSERT INTO store.shopping_cart (userid, item_count) VALUES ('4567', 20);"))
	require.NoError(t, err)

	require.True(t, result.Success)
	require.NotNil(t, result.QueryResults)
	require.Empty(t, result.QueryResults)
	require.NotNil(t, result.Warnings)
	require.Empty(t, result.Warnings)
	require.NotNil(t, result.Columns)
	require.Equal(t, "exec-1", result.ExecutionID)
	require.Zero(t, result.RowCount())
	require.True(t, session.IsClosed())
}

func TestExecuteTranscribesRows(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []map[string]any{
		{"userid": "9876", "item_count": 2, "last_update_timestamp": ts},
		{"userid": "4567", "item_count": 20, "last_update_timestamp": nil},
	}

	session := testutil.NewMockSession()
	iter := &testutil.MockIter{
		Rows: rows,
		Cols: testutil.Columns("store", "shopping_cart", "userid", "item_count", "last_update_timestamp"),
	}
	session.SetIter(iter)
	executor := newTestExecutor(t, testutil.NewMockConnector(session))

	result, err := executor.Execute(context.Background(), validInput("SELECT * FROM store.shopping_cart;"))
	require.NoError(t, err)

	require.Equal(t, 2, result.RowCount())
	assert.Equal(t, []Row(rows), result.QueryResults)
	assert.Equal(t, []string{"userid", "item_count", "last_update_timestamp"}, result.Columns)
	assert.True(t, iter.IsClosed())
}

func TestExecuteWarnings(t *testing.T) {
	session := testutil.NewMockSession()
	session.SetIter(&testutil.MockIter{
		Rows:              []map[string]any{{"count": int64(1)}},
		FirstPageWarnings: []string{aggregationWarning},
		LaterPageWarnings: []string{aggregationWarning, "Read 5000 live rows"},
	})
	logger := newRecordingLogger()
	executor := newTestExecutor(t, testutil.NewMockConnector(session), WithLogger(logger))

	result, err := executor.Execute(context.Background(), validInput("SELECT count(*) FROM store.shopping_cart;"))
	require.NoError(t, err)

	require.Equal(t, []string{aggregationWarning, "Read 5000 live rows"}, result.Warnings)
	require.Equal(t, 2, logger.count("warn"))
	require.Zero(t, logger.count("error"))
}

func TestExecuteLogLinesCarryExecutionContext(t *testing.T) {
	assertContext := func(t *testing.T, logger *recordingLogger, id string) {
		t.Helper()
		entries := logger.all()
		require.NotEmpty(t, entries)
		for _, entry := range entries {
			assert.Equal(t, id, entry.fields["execution_id"], entry.msg)
			assert.Equal(t, "store", entry.fields["keyspace"], entry.msg)
			assert.Equal(t, []string{"127.0.0.1"}, entry.fields["hosts"], entry.msg)
		}
	}

	t.Run("success with warnings", func(t *testing.T) {
		session := testutil.NewMockSession()
		session.SetIter(&testutil.MockIter{
			Rows:              []map[string]any{{"count": int64(1)}},
			FirstPageWarnings: []string{aggregationWarning},
		})
		logger := newRecordingLogger()
		executor := newTestExecutor(t, testutil.NewMockConnector(session),
			WithLogger(logger), WithIDGenerator(func() string { return "exec-ok" }))

		in := validInput("SELECT count(*) FROM shopping_cart")
		in.Keyspace = "store"
		_, err := executor.Execute(context.Background(), in)
		require.NoError(t, err)
		require.Equal(t, 1, logger.count("warn"))
		assertContext(t, logger, "exec-ok")
	})

	t.Run("connect failure", func(t *testing.T) {
		connector := testutil.NewMockConnector(nil)
		connector.Err = errors.New("no hosts available in the pool")
		logger := newRecordingLogger()
		executor := newTestExecutor(t, connector,
			WithLogger(logger), WithIDGenerator(func() string { return "exec-fail" }))

		in := validInput("SELECT * FROM shopping_cart")
		in.Keyspace = "store"
		_, err := executor.Execute(context.Background(), in)
		require.Error(t, err)
		require.Equal(t, 1, logger.count("error"))
		assertContext(t, logger, "exec-fail")
	})
}

func TestExecuteConnectError(t *testing.T) {
	driverErr := errors.New("no hosts available in the pool")
	connector := testutil.NewMockConnector(nil)
	connector.Err = driverErr
	logger := newRecordingLogger()
	metrics := testutil.NewTestMetricsCollector()
	executor := newTestExecutor(t, connector, WithLogger(logger), WithMetrics(metrics))

	result, err := executor.Execute(context.Background(), validInput("SELECT * FROM t"))
	require.Nil(t, result)
	require.ErrorIs(t, err, driverErr)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	require.Equal(t, OpConnect, taskErr.Operation)
	require.Equal(t, 1, logger.count("error"))

	snap := metrics.Snapshot()
	require.Equal(t, int64(1), snap.ConnectTotal)
	require.Equal(t, int64(1), snap.ConnectErrors)
	require.Zero(t, snap.QueryTotal)
}

func TestExecuteQueryError(t *testing.T) {
	driverErr := errors.New("unconfigured table shopping_cart")
	iter := &testutil.MockIter{Err: driverErr, FirstPageWarnings: []string{"ignored"}}
	session := testutil.NewMockSession()
	session.SetIter(iter)
	metrics := testutil.NewTestMetricsCollector()
	executor := newTestExecutor(t, testutil.NewMockConnector(session), WithMetrics(metrics))

	result, err := executor.Execute(context.Background(), validInput("SELECT * FROM shopping_cart"))
	require.Nil(t, result)
	require.ErrorIs(t, err, driverErr)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	require.Equal(t, OpExecute, taskErr.Operation)
	require.True(t, session.IsClosed())
	require.True(t, iter.IsClosed())

	snap := metrics.Snapshot()
	require.Equal(t, int64(1), snap.QueryTotal)
	require.Equal(t, int64(1), snap.QueryErrors)
	require.Equal(t, 1, snap.Observations)
	require.Zero(t, snap.RowsReturned)
}

func TestExecuteCloseError(t *testing.T) {
	closeErr := errors.New("connection reset")
	session := testutil.NewMockSession()
	session.SetIter(&testutil.MockIter{
		Rows:     []map[string]any{{"userid": "9876"}},
		CloseErr: closeErr,
	})
	executor := newTestExecutor(t, testutil.NewMockConnector(session))

	result, err := executor.Execute(context.Background(), validInput("SELECT * FROM store.shopping_cart"))
	require.Nil(t, result)
	require.ErrorIs(t, err, closeErr)
	require.True(t, session.IsClosed())
}

func TestExecuteSliceMapErrorWinsOverCloseError(t *testing.T) {
	sliceErr := errors.New("read timeout")
	session := testutil.NewMockSession()
	session.SetIter(&testutil.MockIter{Err: sliceErr, CloseErr: errors.New("close")})
	executor := newTestExecutor(t, testutil.NewMockConnector(session))

	_, err := executor.Execute(context.Background(), validInput("SELECT * FROM t"))
	require.ErrorIs(t, err, sliceErr)
}

func TestExecuteMetrics(t *testing.T) {
	session := testutil.NewMockSession()
	session.SetIter(&testutil.MockIter{
		Rows:              []map[string]any{{"a": 1}, {"a": 2}, {"a": 3}},
		FirstPageWarnings: []string{aggregationWarning},
	})
	metrics := testutil.NewTestMetricsCollector()
	executor := newTestExecutor(t, testutil.NewMockConnector(session), WithMetrics(metrics))

	_, err := executor.Execute(context.Background(), validInput("SELECT a FROM t"))
	require.NoError(t, err)

	snap := metrics.Snapshot()
	require.Equal(t, int64(1), snap.ConnectTotal)
	require.Zero(t, snap.ConnectErrors)
	require.Equal(t, int64(1), snap.QueryTotal)
	require.Zero(t, snap.QueryErrors)
	require.Equal(t, 1, snap.Observations)
	require.Equal(t, int64(3), snap.RowsReturned)
	require.Equal(t, int64(1), snap.ServerWarnings)
}

func TestExecuteSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	session := testutil.NewMockSession()
	session.SetIter(&testutil.MockIter{
		Rows:              []map[string]any{{"count": int64(1)}},
		FirstPageWarnings: []string{aggregationWarning},
	})
	executor := newTestExecutor(t, testutil.NewMockConnector(session),
		WithTracerProvider(tp),
		WithIDGenerator(func() string { return "exec-42" }),
	)

	in := validInput("select count(*) FROM store.shopping_cart;")
	in.Keyspace = "store"
	_, err := executor.Execute(context.Background(), in)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	require.Equal(t, spanName, span.Name())
	require.Equal(t, codes.Ok, span.Status().Code)

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "cassandra", attrs["db.system"].AsString())
	assert.Equal(t, "SELECT", attrs["db.operation.name"].AsString())
	assert.Equal(t, "store", attrs["db.namespace"].AsString())
	assert.Equal(t, "QUORUM", attrs["db.cassandra.consistency_level"].AsString())
	assert.Equal(t, "127.0.0.1", attrs["server.address"].AsString())
	assert.Equal(t, int64(9042), attrs["server.port"].AsInt64())
	assert.Equal(t, "exec-42", attrs["cqltask.execution_id"].AsString())
	assert.Equal(t, int64(1), attrs["cqltask.rows"].AsInt64())
	assert.Equal(t, int64(1), attrs["cqltask.warnings"].AsInt64())

	events := span.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "server warning", events[0].Name)
}

func TestExecuteSpanRecordsFailure(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	connector := testutil.NewMockConnector(nil)
	connector.Err = errors.New("connection refused")
	executor := newTestExecutor(t, connector, WithTracerProvider(tp))

	_, err := executor.Execute(context.Background(), validInput("SELECT * FROM t"))
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Error, spans[0].Status().Code)
	require.NotEmpty(t, spans[0].Events())
	require.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestExecuteQueryConvenience(t *testing.T) {
	session := testutil.NewMockSession()
	session.SetIter(&testutil.MockIter{Rows: []map[string]any{{"userid": "9876"}}})

	result, err := ExecuteQuery(context.Background(), validInput("SELECT * FROM store.shopping_cart"),
		WithConnector(testutil.NewMockConnector(session)),
	)
	require.NoError(t, err)
	require.Equal(t, 1, result.RowCount())
	require.NotEmpty(t, result.ExecutionID)

	_, err = ExecuteQuery(context.Background(), validInput("SELECT 1"), WithConnector(nil))
	require.ErrorIs(t, err, types.ErrNilConnector)
}

func TestExecutorConcurrentUse(t *testing.T) {
	executor := newTestExecutor(t, cql.ConnectorFunc(func(context.Context, cql.ConnectConfig) (cql.Session, error) {
		session := testutil.NewMockSession()
		session.SetIter(&testutil.MockIter{Rows: []map[string]any{{"n": 1}}})

		return session, nil
	}))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := executor.Execute(context.Background(), validInput("SELECT n FROM t"))
			if err == nil && result.RowCount() != 1 {
				err = fmt.Errorf("unexpected row count %d", result.RowCount())
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

func TestOperationName(t *testing.T) {
	tests := []struct {
		stmt string
		want string
	}{
		{"SELECT * FROM t", "SELECT"},
		{"  insert into t (a) values (1)", "INSERT"},
		{"truncate;", "TRUNCATE"},
		{"\n\tcount(", "COUNT"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, operationName(tt.stmt), "stmt %q", tt.stmt)
	}
}

func TestWarningSet(t *testing.T) {
	var s warningSet
	require.NotNil(t, s.list())
	require.Empty(t, s.list())

	s.add("b", "a", "b")
	s.add("a", "c")
	require.Equal(t, []string{"b", "a", "c"}, s.list())
}
