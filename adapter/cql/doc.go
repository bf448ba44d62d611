// Package cql provides adapter interfaces and implementations for CQL (Cassandra Query Language)
// database drivers.
//
// This package defines the common interfaces that CQL driver adapters must implement,
// allowing cqltask to work with different versions of gocql.
//
// # Interfaces
//
//   - Connector: Opens a session from a ConnectConfig
//   - Session: Wraps a database session for executing queries
//   - Query: Represents a CQL query with bind parameters
//   - Iter: Iterates over query results and exposes server warnings
//
// # Adapters
//
// Driver-specific adapters are provided in subpackages:
//
//   - [github.com/arloliu/cqltask/adapter/cql/v1]: Adapter for gocql v1.x
//   - [github.com/arloliu/cqltask/adapter/cql/v2]: Adapter for apache/cassandra-gocql-driver v2.x
//
// # Usage
//
// Pick the connector matching your driver version:
//
//	import (
//	    "github.com/arloliu/cqltask"
//	    v2 "github.com/arloliu/cqltask/adapter/cql/v2"
//	)
//
//	executor, err := cqltask.NewExecutor(cqltask.WithConnector(v2.NewConnector()))
//	if err != nil {
//		return err
//	}
//
// An existing gocql session can also be wrapped directly:
//
//	session := v1.NewSession(gocqlSession)
package cql
