// Package types provides shared types and error definitions for the cqltask library.
//
// This is a leaf package with zero cqltask imports to prevent import cycles.
// All packages in cqltask can safely import this package.
//
// # Types
//
// Input describes one execution and Result carries its outcome:
//
//	in := types.Input{
//	    ContactPoints: []string{"127.0.0.1"},
//	    Port:          9042,
//	    Query:         "SELECT * FROM store.shopping_cart",
//	}
//
//	type Result struct {
//	    Success      bool
//	    QueryResults []Row
//	    Warnings     []string
//	    Columns      []string
//	    ExecutionID  string
//	}
//
// Consistency levels mirror gocql consistency levels and can be parsed from
// their CQL names with ParseConsistency.
//
// # Errors
//
// Sentinel errors are provided for invalid input and configuration:
//
//   - ErrNoContactPoints: No usable contact point was given
//   - ErrInvalidPort: Port is outside the valid range
//   - ErrEmptyQuery: Query text is blank
//   - ErrNilConnector: A nil connector was configured
//   - ErrInvalidConsistency: Unknown consistency level name
//
// Driver failures are wrapped in TaskError, which records whether the
// failure happened while connecting or while executing.
package types
