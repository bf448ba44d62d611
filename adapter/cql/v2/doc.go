// Package v2 provides an adapter for gocql v2 (github.com/apache/cassandra-gocql-driver).
//
// This adapter wraps the Apache Cassandra gocql driver v2 to implement
// the cqltask CQL interfaces.
//
// # Usage
//
// Select the v2 driver for an executor:
//
//	executor, err := cqltask.NewExecutor(cqltask.WithConnector(v2.NewConnector()))
//	if err != nil {
//		return err
//	}
//
// or wrap an existing session:
//
//	cluster := gocql.NewCluster("127.0.0.1", "127.0.0.2")
//	gocqlSession, err := cluster.CreateSession()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	session := v2.NewSession(gocqlSession)
//
// # Differences from v1
//
// The v2 driver accepts a context on query execution natively and has no
// query pooling, so Query.Release is a no-op.
//
// # Thread Safety
//
// All adapter types are safe for concurrent use, matching gocql's thread safety guarantees.
package v2
