// Package cql provides CQL-specific adapter interfaces for different gocql versions.
package cql

import (
	"context"
	"time"

	"github.com/arloliu/cqltask/types"
)

// Type aliases for convenience - re-export from types package.
type (
	Consistency = types.Consistency
	Credentials = types.Credentials
)

// Re-export consistency level constants for convenience.
const (
	Any         = types.Any
	One         = types.One
	Two         = types.Two
	Three       = types.Three
	Quorum      = types.Quorum
	All         = types.All
	LocalQuorum = types.LocalQuorum
	EachQuorum  = types.EachQuorum
	Serial      = types.Serial
	LocalSerial = types.LocalSerial
	LocalOne    = types.LocalOne
)

// ConnectConfig holds everything a Connector needs to open a session.
type ConnectConfig struct {
	// ContactPoints are the initial hosts. Must not be empty.
	ContactPoints []string

	// Port is the native protocol port.
	Port int

	// Keyspace is the session keyspace. Empty selects none.
	Keyspace string

	// Consistency is the default consistency level for the session.
	Consistency Consistency

	// Timeout bounds each request to the cluster.
	Timeout time.Duration

	// ConnectTimeout bounds the initial connection to each host.
	ConnectTimeout time.Duration

	// Credentials are passed to the driver's password authenticator
	// when non-zero.
	Credentials Credentials
}

// Connector opens driver sessions.
//
// Implementations are provided by the v1 and v2 adapter packages.
type Connector interface {
	// Connect opens a new session.
	//
	// Parameters:
	//   - ctx: Context checked before the driver is asked to connect
	//   - cfg: Connection settings
	//
	// Returns:
	//   - Session: An open session; the caller must Close it
	//   - error: Error from the driver if the session could not be created
	Connect(ctx context.Context, cfg ConnectConfig) (Session, error)
}

// ConnectorFunc adapts an ordinary function to the Connector interface.
type ConnectorFunc func(ctx context.Context, cfg ConnectConfig) (Session, error)

// Connect calls f(ctx, cfg).
func (f ConnectorFunc) Connect(ctx context.Context, cfg ConnectConfig) (Session, error) {
	return f(ctx, cfg)
}

// Session represents a raw CQL session from the underlying driver.
//
// This interface is implemented by adapters for gocql v1 and v2.
type Session interface {
	// Query creates a new query for the given statement.
	//
	// Parameters:
	//   - stmt: CQL statement with ? placeholders
	//   - values: Values to bind to placeholders
	//
	// Returns:
	//   - Query: A query builder
	Query(stmt string, values ...any) Query

	// Close terminates the session.
	Close()
}

// Query represents a raw CQL query from the underlying driver.
type Query interface {
	// Consistency sets the consistency level.
	Consistency(c Consistency) Query

	// PageSize sets the page size.
	PageSize(n int) Query

	// IterContext executes the query with context and returns an iterator
	// positioned on the first page.
	IterContext(ctx context.Context) Iter

	// Release returns the query to a pool (if applicable).
	Release()
}

// Iter represents a raw CQL iterator from the underlying driver.
type Iter interface {
	// SliceMap reads all remaining rows, across pages, into a slice of maps.
	SliceMap() ([]map[string]any, error)

	// Columns returns metadata about the columns in the result set.
	Columns() []ColumnInfo

	// Warnings returns any warnings from the Cassandra server.
	Warnings() []string

	// Close closes the iterator and returns any error that occurred
	// during execution or iteration.
	Close() error
}

// ColumnInfo holds metadata about a column in query results.
type ColumnInfo struct {
	Keyspace string
	Table    string
	Name     string
	TypeInfo any
}
