package cqltask

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/arloliu/cqltask/adapter/cql"
	"github.com/arloliu/cqltask/internal/logging"
	"github.com/arloliu/cqltask/internal/metrics"
	"github.com/arloliu/cqltask/types"
)

// Executor runs single CQL statements against a cluster.
//
// Every call to Execute opens its own session and closes it before returning,
// so an Executor holds no connections and is safe for concurrent use.
type Executor struct {
	config *TaskConfig
	tracer trace.Tracer
}

// NewExecutor creates a new Executor.
//
// Parameters:
//   - opts: Optional configuration options
//
// Returns:
//   - *Executor: A new executor
//   - error: ErrNilConnector if the connector was set to nil
func NewExecutor(opts ...Option) (*Executor, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	if config.Connector == nil {
		return nil, types.ErrNilConnector
	}

	// Ensure metrics is never nil
	if config.Metrics == nil {
		config.Metrics = metrics.NewNopMetrics()
	}

	// Ensure logger is never nil
	if config.Logger == nil {
		config.Logger = logging.NewNopLogger()
	}

	if config.IDGenerator == nil {
		config.IDGenerator = DefaultIDGenerator
	}

	return &Executor{
		config: config,
		tracer: newTracer(config.TracerProvider),
	}, nil
}

// ExecuteQuery runs one statement with a one-off Executor.
//
// Parameters:
//   - ctx: Context forwarded to the driver
//   - in: Contact points, port, keyspace and query text
//   - opts: Optional configuration options
//
// Returns:
//   - *Result: Rows and server warnings
//   - error: Validation error or *TaskError on driver failure
//
// Example:
//
//	result, err := cqltask.ExecuteQuery(ctx, cqltask.Input{
//	    ContactPoints: []string{"127.0.0.1"},
//	    Port:          9042,
//	    Query:         "SELECT * FROM store.shopping_cart;",
//	})
func ExecuteQuery(ctx context.Context, in Input, opts ...Option) (*Result, error) {
	executor, err := NewExecutor(opts...)
	if err != nil {
		return nil, err
	}

	return executor.Execute(ctx, in)
}

// Execute connects to the cluster described by in, runs in.Query and
// returns every row together with the server warnings.
//
// The query text is handed to the driver unchanged. Rows are the driver's
// column maps, one per row, across all pages. There are no retries: any
// driver failure while connecting or executing is returned as a *TaskError
// and no partial result is returned.
//
// Parameters:
//   - ctx: Context forwarded to the driver; a cancelled context fails before connecting
//   - in: Contact points, port, keyspace and query text
//
// Returns:
//   - *Result: Rows and server warnings, Success is always true
//   - error: Validation error, context error, or *TaskError
func (e *Executor) Execute(ctx context.Context, in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := e.config
	id := cfg.IDGenerator()
	hosts := in.Hosts()

	ctx, span := e.startSpan(ctx, in, hosts, id)
	defer span.End()

	fields := logFields{"execution_id", id, "keyspace", in.Keyspace, "hosts", hosts}

	cfg.Logger.Debug("opening session", fields.with("port", in.EffectivePort())...)

	cfg.Metrics.IncConnectTotal()
	session, err := cfg.Connector.Connect(ctx, cql.ConnectConfig{
		ContactPoints:  hosts,
		Port:           in.EffectivePort(),
		Keyspace:       in.Keyspace,
		Consistency:    cfg.Consistency,
		Timeout:        cfg.Timeout,
		ConnectTimeout: cfg.ConnectTimeout,
		Credentials:    cfg.Credentials,
	})
	if err != nil {
		cfg.Metrics.IncConnectError()

		return nil, e.fail(span, fields, types.OpConnect, err)
	}
	defer session.Close()

	result, err := e.run(ctx, session, in.Query)
	if err != nil {
		cfg.Metrics.IncQueryError()

		return nil, e.fail(span, fields, types.OpExecute, err)
	}
	result.ExecutionID = id

	cfg.Metrics.AddRowsReturned(len(result.QueryResults))
	cfg.Metrics.AddServerWarnings(len(result.Warnings))
	for _, w := range result.Warnings {
		cfg.Logger.Warn("server warning", fields.with("warning", w)...)
	}
	endSpan(span, result)

	cfg.Logger.Debug("query executed", fields.with(
		"rows", len(result.QueryResults),
		"warnings", len(result.Warnings),
	)...)

	return result, nil
}

// run executes stmt on session and reads the complete result.
func (e *Executor) run(ctx context.Context, session cql.Session, stmt string) (*Result, error) {
	cfg := e.config

	query := session.Query(stmt).Consistency(cfg.Consistency)
	if cfg.PageSize > 0 {
		query = query.PageSize(cfg.PageSize)
	}
	defer query.Release()

	cfg.Metrics.IncQueryTotal()
	start := time.Now()

	iter := query.IterContext(ctx)

	// The first page is already fetched here; later pages may carry
	// warnings of their own.
	var warnings warningSet
	warnings.add(iter.Warnings()...)
	columns := columnNames(iter.Columns())

	rows, err := iter.SliceMap()
	warnings.add(iter.Warnings()...)
	if closeErr := iter.Close(); err == nil {
		err = closeErr
	}
	cfg.Metrics.ObserveQueryDuration(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if rows == nil {
		rows = []Row{}
	}

	return &Result{
		Success:      true,
		QueryResults: rows,
		Warnings:     warnings.list(),
		Columns:      columns,
	}, nil
}

// fail logs err, records it on the span and wraps it in a TaskError.
func (e *Executor) fail(span trace.Span, fields logFields, op string, err error) error {
	e.config.Logger.Error("query task failed", fields.with(
		"operation", op,
		"error", err,
	)...)
	taskErr := &types.TaskError{Operation: op, Cause: err}
	failSpan(span, taskErr)

	return taskErr
}

// logFields are the key/value pairs shared by every log line of one execution.
type logFields []any

func (f logFields) with(keysAndValues ...any) []any {
	out := make([]any, 0, len(f)+len(keysAndValues))
	out = append(out, f...)

	return append(out, keysAndValues...)
}

func columnNames(cols []cql.ColumnInfo) []string {
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}

	return names
}

// warningSet keeps server warnings unique, in arrival order.
type warningSet struct {
	seen  map[string]struct{}
	items []string
}

func (s *warningSet) add(warnings ...string) {
	for _, w := range warnings {
		if _, ok := s.seen[w]; ok {
			continue
		}
		if s.seen == nil {
			s.seen = make(map[string]struct{})
		}
		s.seen[w] = struct{}{}
		s.items = append(s.items, w)
	}
}

func (s *warningSet) list() []string {
	if s.items == nil {
		return []string{}
	}

	return s.items
}
