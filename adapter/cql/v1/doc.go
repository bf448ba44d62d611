// Package v1 provides an adapter for gocql v1.x to work with the cqltask library.
//
// This adapter wraps gocql sessions, queries, and iterators to implement
// the cqltask CQL interfaces, and provides a Connector that builds a
// gocql.ClusterConfig from a cql.ConnectConfig.
//
// # Usage
//
// The v1 connector is the default used by cqltask.NewExecutor. To tune the
// underlying gocql configuration, register a hook:
//
//	connector := v1.NewConnector(
//	    v1.WithClusterConfig(func(c *gocql.ClusterConfig) {
//	        c.ProtoVersion = 4
//	    }),
//	)
//	executor, err := cqltask.NewExecutor(cqltask.WithConnector(connector))
//	if err != nil {
//		return err
//	}
//
// # Type Conversions
//
//   - [ToGocqlConsistency]: Converts cqltask Consistency to gocql.Consistency
//   - [FromGocqlConsistency]: Converts gocql.Consistency to cqltask Consistency
//   - [UnwrapSession]: Returns the underlying gocql.Session
//
// # Thread Safety
//
// All adapter types are safe for concurrent use, matching gocql's thread safety guarantees.
package v1
