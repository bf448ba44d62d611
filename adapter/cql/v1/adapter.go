// Package v1 provides an adapter for gocql v1 (github.com/gocql/gocql).
package v1

import (
	"context"

	"github.com/arloliu/cqltask/adapter/cql"
	"github.com/gocql/gocql"
)

// Session wraps a gocql v1 session.
type Session struct {
	session *gocql.Session
}

// Compile-time assertion that Session implements cql.Session.
var _ cql.Session = (*Session)(nil)

// NewSession creates a new v1 adapter from a gocql session.
//
// Parameters:
//   - session: A gocql.Session instance
//
// Returns:
//   - *Session: An adapter implementing cql.Session
func NewSession(session *gocql.Session) *Session {
	return &Session{session: session}
}

// WrapSession is an alias for NewSession that returns the interface type.
//
// Parameters:
//   - session: A gocql.Session instance
//
// Returns:
//   - cql.Session: An adapter implementing cql.Session interface
func WrapSession(session *gocql.Session) cql.Session {
	return NewSession(session)
}

// Query creates a new query for the given statement.
//
// Parameters:
//   - stmt: CQL statement with ? placeholders
//   - values: Values to bind to placeholders
//
// Returns:
//   - cql.Query: A query builder
func (s *Session) Query(stmt string, values ...any) cql.Query {
	return &Query{
		query: s.session.Query(stmt, values...),
	}
}

// Close terminates the session.
func (s *Session) Close() {
	s.session.Close()
}

// Query wraps a gocql v1 query.
type Query struct {
	query *gocql.Query
}

// Consistency sets the consistency level.
func (q *Query) Consistency(c cql.Consistency) cql.Query {
	q.query = q.query.Consistency(gocql.Consistency(c))
	return q
}

// PageSize sets the page size.
func (q *Query) PageSize(n int) cql.Query {
	q.query = q.query.PageSize(n)
	return q
}

// IterContext executes the query with context and returns an iterator.
func (q *Query) IterContext(ctx context.Context) cql.Iter {
	return &Iter{iter: q.query.WithContext(ctx).Iter()}
}

// Release returns the query to the pool.
func (q *Query) Release() {
	q.query.Release()
}

// Iter wraps a gocql v1 iterator.
type Iter struct {
	iter *gocql.Iter
}

// SliceMap reads all rows into a slice of maps.
func (i *Iter) SliceMap() ([]map[string]any, error) {
	if i.iter == nil {
		return nil, nil
	}

	return i.iter.SliceMap()
}

// Columns returns metadata about the columns in the result set.
func (i *Iter) Columns() []cql.ColumnInfo {
	if i.iter == nil {
		return nil
	}

	gocqlCols := i.iter.Columns()
	result := make([]cql.ColumnInfo, len(gocqlCols))
	for idx, col := range gocqlCols {
		result[idx] = cql.ColumnInfo{
			Keyspace: col.Keyspace,
			Table:    col.Table,
			Name:     col.Name,
			TypeInfo: col.TypeInfo,
		}
	}

	return result
}

// Warnings returns any warnings from the Cassandra server.
func (i *Iter) Warnings() []string {
	if i.iter == nil {
		return nil
	}

	return i.iter.Warnings()
}

// Close closes the iterator.
func (i *Iter) Close() error {
	if i.iter == nil {
		return nil
	}

	return i.iter.Close()
}
