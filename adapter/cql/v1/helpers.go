package v1

import (
	"github.com/arloliu/cqltask/adapter/cql"
	"github.com/gocql/gocql"
)

// ToGocqlConsistency converts a cqltask Consistency to gocql.Consistency.
//
// Parameters:
//   - c: cqltask consistency level
//
// Returns:
//   - gocql.Consistency: The equivalent gocql consistency level
//
// Example:
//
//	cluster := gocql.NewCluster("127.0.0.1")
//	cluster.Consistency = v1.ToGocqlConsistency(cql.Quorum)
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
// Parameters:
//   - s: v1 Session adapter
//
// Returns:
//   - *gocql.Session: The underlying gocql session
//
// Example:
//
//	gocqlSession := v1.UnwrapSession(session)
//	keyspaceMeta, _ := gocqlSession.KeyspaceMetadata("store")
func UnwrapSession(s *Session) *gocql.Session {
	return s.session
}
