package v2

import (
	gocql "github.com/apache/cassandra-gocql-driver/v2"

	"github.com/arloliu/cqltask/adapter/cql"
)

// ToGocqlConsistency converts a cqltask Consistency to gocql.Consistency.
//
// Parameters:
//   - c: cqltask consistency level
//
// Returns:
//   - gocql.Consistency: The equivalent gocql consistency level
func ToGocqlConsistency(c cql.Consistency) gocql.Consistency {
	return gocql.Consistency(c)
}

// FromGocqlConsistency converts a gocql.Consistency to cqltask Consistency.
//
// Parameters:
//   - c: gocql consistency level
//
// Returns:
//   - cql.Consistency: The equivalent cqltask consistency level
func FromGocqlConsistency(c gocql.Consistency) cql.Consistency {
	return cql.Consistency(c)
}

// UnwrapSession returns the underlying gocql.Session from a Session adapter.
//
// This is useful when you need direct access to the underlying gocql session
// for operations not exposed by the cqltask interface.
//
// Parameters:
//   - s: v2 Session adapter
//
// Returns:
//   - *gocql.Session: The underlying gocql session
func UnwrapSession(s *Session) *gocql.Session {
	return s.session
}
