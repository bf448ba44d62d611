// Package cqltask runs a single CQL statement against a Cassandra cluster and
// returns the rows together with any server-side warnings.
//
// It is a thin layer over gocql: it opens a session for the given contact
// points, port and keyspace, hands the query text to the driver unchanged,
// reads every row into a column-name keyed map and closes the session.
// Pooling, retries, authentication and topology handling are left to the
// driver.
//
// # Basic Usage
//
//	result, err := cqltask.ExecuteQuery(ctx, cqltask.Input{
//	    ContactPoints: []string{"127.0.0.1"},
//	    Port:          9042,
//	    Query:         "SELECT count(*) FROM store.shopping_cart;",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, w := range result.Warnings {
//	    log.Printf("server warning: %s", w) // Aggregation query used without partition key
//	}
//
// # Reusing Configuration
//
// An Executor carries driver options, logging, metrics and tracing, and can
// be shared across goroutines:
//
//	executor, err := cqltask.NewExecutor(
//	    cqltask.WithConnector(v2.NewConnector()),
//	    cqltask.WithConsistency(cqltask.LocalQuorum),
//	    cqltask.WithCredentials("cassandra", "cassandra"),
//	    cqltask.WithMetrics(vm.New()),
//	)
//	result, err := executor.Execute(ctx, input)
//
// # Error Handling
//
// Input validation returns sentinel errors from the types package
// (ErrNoContactPoints, ErrInvalidPort, ErrEmptyQuery). Driver failures are
// wrapped in a TaskError naming the failed step:
//
//	var taskErr *cqltask.TaskError
//	if errors.As(err, &taskErr) && taskErr.Operation == cqltask.OpConnect {
//	    // cluster unreachable
//	}
//
// A returned error always means the task failed; there are no partial results.
package cqltask
