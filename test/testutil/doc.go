// Package testutil provides test utilities and mock implementations for cqltask testing.
//
// # Mock Implementations
//
//   - [MockConnector]: Mock implementation of cql.Connector
//   - [MockSession]: Mock implementation of cql.Session
//   - [MockQuery]: Mock implementation of cql.Query
//   - [MockIter]: Mock implementation of cql.Iter
//   - [TestMetricsCollector]: Recording types.MetricsCollector
//
// # Usage
//
//	session := testutil.NewMockSession()
//	session.SetIter(&testutil.MockIter{
//	    Rows:              []map[string]any{{"userid": "9876", "item_count": 2}},
//	    Cols:              testutil.Columns("store", "shopping_cart", "userid", "item_count"),
//	    FirstPageWarnings: []string{"Aggregation query used without partition key"},
//	})
//
//	executor, _ := cqltask.NewExecutor(
//	    cqltask.WithConnector(testutil.NewMockConnector(session)),
//	)
//
// # Integration Test Helpers
//
//   - [StartCQLCluster]: Starts a Cassandra (or ScyllaDB) container, requires Docker
//   - [CreateStore]: Creates the store.shopping_cart fixture table
//   - [CountRows]: Counts the rows of a table
package testutil
