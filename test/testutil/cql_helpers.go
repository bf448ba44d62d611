package testutil

import (
	"fmt"

	"github.com/gocql/gocql"
)

// StoreKeyspace and StoreTable name the shopping cart fixture.
const (
	StoreKeyspace = "store"
	StoreTable    = "shopping_cart"
)

// StoreSeedUserID is the user id inserted by CreateStore.
const StoreSeedUserID = "9876"

// CreateStore creates the store keyspace and the shopping_cart table and
// inserts one seed row. Existing data in the table is removed first.
//
// Parameters:
//   - session: Administrative session
//
// Returns:
//   - error: Error if any statement fails
func CreateStore(session *gocql.Session) error {
	stmts := []string{
		fmt.Sprintf("CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}", StoreKeyspace),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s (userid text PRIMARY KEY, item_count int, last_update_timestamp timestamp)", StoreKeyspace, StoreTable),
		fmt.Sprintf("TRUNCATE %s.%s", StoreKeyspace, StoreTable),
		fmt.Sprintf("INSERT INTO %s.%s (userid, item_count, last_update_timestamp) VALUES ('%s', 2, toTimestamp(now()))", StoreKeyspace, StoreTable, StoreSeedUserID),
	}

	for _, stmt := range stmts {
		if err := session.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}

	return nil
}

// CountRows returns the number of rows in keyspace.table as seen by session.
func CountRows(session *gocql.Session, keyspace, table string) (int, error) {
	var n int64
	stmt := fmt.Sprintf("SELECT count(*) FROM %s.%s", keyspace, table)
	if err := session.Query(stmt).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}

	return int(n), nil
}
