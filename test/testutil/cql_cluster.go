package testutil

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/cassandra"
	"github.com/testcontainers/testcontainers-go/modules/scylladb"
)

// CQLClusterType identifies the database backend.
type CQLClusterType int

const (
	// CQLClusterTypeNone indicates no cluster is running.
	CQLClusterTypeNone CQLClusterType = iota
	// CQLClusterTypeScyllaDB indicates ScyllaDB is being used.
	CQLClusterTypeScyllaDB
	// CQLClusterTypeCassandra indicates Cassandra is being used.
	CQLClusterTypeCassandra
)

// String returns the string representation of the cluster type.
func (t CQLClusterType) String() string {
	switch t {
	case CQLClusterTypeScyllaDB:
		return "ScyllaDB"
	case CQLClusterTypeCassandra:
		return "Cassandra"
	case CQLClusterTypeNone:
		return "None"
	}

	return "Unknown"
}

// CQLCluster represents a single-node CQL database started for testing.
type CQLCluster struct {
	Type CQLClusterType
	Host string
	Port int

	// Session is an administrative session used for fixtures.
	Session *gocql.Session

	scyllaContainer    *scylladb.Container
	cassandraContainer *cassandra.CassandraContainer
}

// Close closes the administrative session (does not terminate the container).
func (c *CQLCluster) Close() {
	if c.Session != nil {
		c.Session.Close()
		c.Session = nil
	}
}

// Terminate closes the session and terminates the container.
func (c *CQLCluster) Terminate(ctx context.Context) error {
	c.Close()

	switch c.Type {
	case CQLClusterTypeScyllaDB:
		if c.scyllaContainer != nil {
			return c.scyllaContainer.Terminate(ctx)
		}
	case CQLClusterTypeCassandra:
		if c.cassandraContainer != nil {
			return c.cassandraContainer.Terminate(ctx)
		}
	case CQLClusterTypeNone:
	}

	return nil
}

// EmitsAggregationWarning reports whether the backend warns about
// aggregation queries without a partition key. ScyllaDB does not.
func (c *CQLCluster) EmitsAggregationWarning() bool {
	return c.Type == CQLClusterTypeCassandra
}

// CQLClusterOptions configures the CQL cluster container.
type CQLClusterOptions struct {
	// PreferScyllaDB attempts to use ScyllaDB first, falls back to Cassandra.
	// Default: false
	PreferScyllaDB bool
	// ScyllaDBImage is the ScyllaDB image. Default: "scylladb/scylla:6.2"
	ScyllaDBImage string
	// CassandraImage is the Cassandra image. Default: "cassandra:4.1"
	CassandraImage string
	// Memory for ScyllaDB. Default: "512M"
	ScyllaDBMemory string
	// SMP (CPU cores) for ScyllaDB. Default: 1
	ScyllaDBSMP int
	// ReadyTimeout bounds the wait for the node to accept sessions. Default: 2m
	ReadyTimeout time.Duration
}

// DefaultCQLClusterOptions returns default options.
func DefaultCQLClusterOptions() CQLClusterOptions {
	return CQLClusterOptions{
		ScyllaDBImage:  "scylladb/scylla:6.2",
		CassandraImage: "cassandra:4.1",
		ScyllaDBMemory: "512M",
		ScyllaDBSMP:    1,
		ReadyTimeout:   2 * time.Minute,
	}
}

// IsAIOAvailable checks if the system has available AIO slots for ScyllaDB.
func IsAIOAvailable() bool {
	aioNrData, err := os.ReadFile("/proc/sys/fs/aio-nr")
	if err != nil {
		return false
	}

	aioMaxNrData, err := os.ReadFile("/proc/sys/fs/aio-max-nr")
	if err != nil {
		return false
	}

	aioNr, _ := strconv.ParseInt(strings.TrimSpace(string(aioNrData)), 10, 64)
	aioMaxNr, _ := strconv.ParseInt(strings.TrimSpace(string(aioMaxNrData)), 10, 64)

	return aioNr < aioMaxNr
}

// StartCQLCluster starts a CQL database container for testing.
//
// This function is designed for use in TestMain where *testing.T is not available.
// Caller is responsible for calling cluster.Terminate(ctx) for cleanup.
//
// Parameters:
//   - ctx: Context for container operations
//   - opts: Configuration options
//
// Returns:
//   - *CQLCluster: Cluster with connection details and an admin session
//   - error: Error if the cluster fails to start
func StartCQLCluster(ctx context.Context, opts CQLClusterOptions) (*CQLCluster, error) {
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = 2 * time.Minute
	}

	if opts.PreferScyllaDB && IsAIOAvailable() {
		cluster, err := startScyllaDBCluster(ctx, opts)
		if err == nil {
			return cluster, nil
		}
		log.Printf("ScyllaDB failed: %v, falling back to Cassandra...", err)
	}

	return startCassandraCluster(ctx, opts)
}

func startScyllaDBCluster(ctx context.Context, opts CQLClusterOptions) (*CQLCluster, error) {
	container, err := scylladb.Run(ctx, opts.ScyllaDBImage,
		scylladb.WithCustomCommands(
			fmt.Sprintf("--memory=%s", opts.ScyllaDBMemory),
			fmt.Sprintf("--smp=%d", opts.ScyllaDBSMP),
			"--developer-mode=1",
			"--overprovisioned=1",
			"--reactor-backend=epoll",
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start ScyllaDB container: %w", err)
	}

	endpoint, err := container.NonShardAwareConnectionHost(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection host: %w", err)
	}

	cluster, err := newCQLCluster(ctx, CQLClusterTypeScyllaDB, endpoint, opts.ReadyTimeout)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	cluster.scyllaContainer = container

	return cluster, nil
}

func startCassandraCluster(ctx context.Context, opts CQLClusterOptions) (*CQLCluster, error) {
	container, err := cassandra.Run(ctx, opts.CassandraImage,
		testcontainers.WithEnv(map[string]string{
			"HEAP_NEWSIZE":     "128M",
			"MAX_HEAP_SIZE":    "512M",
			"CASSANDRA_SNITCH": "SimpleSnitch",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start Cassandra container: %w", err)
	}

	endpoint, err := container.ConnectionHost(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection host: %w", err)
	}

	cluster, err := newCQLCluster(ctx, CQLClusterTypeCassandra, endpoint, opts.ReadyTimeout)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	cluster.cassandraContainer = container

	return cluster, nil
}

func newCQLCluster(ctx context.Context, typ CQLClusterType, endpoint string, timeout time.Duration) (*CQLCluster, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid connection host %q: %w", endpoint, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection port %q: %w", portStr, err)
	}

	session, err := waitForSession(ctx, host, port, timeout)
	if err != nil {
		return nil, err
	}

	return &CQLCluster{
		Type:    typ,
		Host:    host,
		Port:    port,
		Session: session,
	}, nil
}

// waitForSession retries session creation until the node accepts CQL
// connections or timeout elapses.
func waitForSession(ctx context.Context, host string, port int, timeout time.Duration) (*gocql.Session, error) {
	cluster := gocql.NewCluster(host)
	cluster.Port = port
	cluster.Consistency = gocql.One
	cluster.Timeout = 30 * time.Second
	cluster.ConnectTimeout = 30 * time.Second

	deadline := time.Now().Add(timeout)
	attempt := 0
	for {
		attempt++
		session, err := cluster.CreateSession()
		if err == nil {
			return session, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("failed to create session after %d attempts: %w", attempt, err)
		}
		log.Printf("waiting for CQL node to be ready (attempt %d): %v", attempt, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
}
