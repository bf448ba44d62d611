package v2

import (
	"context"

	gocql "github.com/apache/cassandra-gocql-driver/v2"

	"github.com/arloliu/cqltask/adapter/cql"
)

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithClusterConfig registers a hook that can adjust the gocql cluster
// configuration before the session is created (TLS, host selection policy,
// protocol version, and so on).
//
// Parameters:
//   - fn: Function applied to every cluster configuration
//
// Returns:
//   - ConnectorOption: Configuration option
func WithClusterConfig(fn func(*gocql.ClusterConfig)) ConnectorOption {
	return func(c *Connector) {
		c.configure = append(c.configure, fn)
	}
}

// Connector opens gocql v2 sessions.
type Connector struct {
	configure []func(*gocql.ClusterConfig)
}

// Compile-time assertion that Connector implements cql.Connector.
var _ cql.Connector = (*Connector)(nil)

// NewConnector creates a gocql v2 connector.
//
// Parameters:
//   - opts: Optional configuration options
//
// Returns:
//   - *Connector: A connector implementing cql.Connector
func NewConnector(opts ...ConnectorOption) *Connector {
	c := &Connector{}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ClusterConfig builds the gocql cluster configuration for cfg.
//
// Zero timeouts keep the gocql defaults.
//
// Parameters:
//   - cfg: Connection settings
//
// Returns:
//   - *gocql.ClusterConfig: Cluster configuration ready for CreateSession
func (c *Connector) ClusterConfig(cfg cql.ConnectConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.ContactPoints...)
	if cfg.Port != 0 {
		cluster.Port = cfg.Port
	}
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = ToGocqlConsistency(cfg.Consistency)
	if cfg.Timeout > 0 {
		cluster.Timeout = cfg.Timeout
	}
	if cfg.ConnectTimeout > 0 {
		cluster.ConnectTimeout = cfg.ConnectTimeout
	}
	if !cfg.Credentials.IsZero() {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Credentials.Username,
			Password: cfg.Credentials.Password,
		}
	}

	for _, fn := range c.configure {
		fn(cluster)
	}

	return cluster
}

// Connect opens a gocql v2 session.
//
// Session creation in the driver does not take a context, so ctx is only
// checked before connecting.
//
// Parameters:
//   - ctx: Context checked before connecting
//   - cfg: Connection settings
//
// Returns:
//   - cql.Session: An open session
//   - error: Context error or error from gocql
func (c *Connector) Connect(ctx context.Context, cfg cql.ConnectConfig) (cql.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := c.ClusterConfig(cfg).CreateSession()
	if err != nil {
		return nil, err
	}

	return NewSession(session), nil
}
