package cqltask

import (
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/arloliu/cqltask/adapter/cql"
	v1 "github.com/arloliu/cqltask/adapter/cql/v1"
	"github.com/arloliu/cqltask/internal/logging"
	"github.com/arloliu/cqltask/internal/metrics"
)

// Default timeouts applied when no option overrides them.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultConnectTimeout = 10 * time.Second
)

// IDGenerator produces execution identifiers.
//
// The default generator returns random (version 4) UUIDs.
type IDGenerator func() string

// DefaultIDGenerator returns a new random UUID string.
func DefaultIDGenerator() string {
	return uuid.NewString()
}

// TaskConfig holds configuration for an Executor.
type TaskConfig struct {
	Connector      cql.Connector
	Logger         Logger
	Metrics        MetricsCollector
	TracerProvider trace.TracerProvider
	Consistency    Consistency
	Timeout        time.Duration
	ConnectTimeout time.Duration
	Credentials    Credentials
	PageSize       int
	IDGenerator    IDGenerator
}

// DefaultConfig returns a TaskConfig with sensible defaults.
//
// Defaults:
//   - Connector: gocql v1 (use v2.NewConnector() for the Apache driver)
//   - Logger and Metrics: no-op
//   - TracerProvider: the global OpenTelemetry provider
//   - Consistency: Quorum
//   - Timeout and ConnectTimeout: 10s
//   - PageSize: 0 (driver default)
//
// Returns:
//   - *TaskConfig: Configuration with default settings
func DefaultConfig() *TaskConfig {
	return &TaskConfig{
		Connector:      v1.NewConnector(),
		Logger:         logging.NewNopLogger(),
		Metrics:        metrics.NewNopMetrics(),
		TracerProvider: otel.GetTracerProvider(),
		Consistency:    Quorum,
		Timeout:        DefaultTimeout,
		ConnectTimeout: DefaultConnectTimeout,
		IDGenerator:    DefaultIDGenerator,
	}
}

// Option configures a TaskConfig.
type Option func(*TaskConfig)

// WithConnector sets the driver connector used to open sessions.
//
// Parameters:
//   - connector: The connector (e.g., v1.NewConnector(), v2.NewConnector())
//
// Returns:
//   - Option: Configuration option
func WithConnector(connector cql.Connector) Option {
	return func(c *TaskConfig) {
		c.Connector = connector
	}
}

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	executor, _ := cqltask.NewExecutor(
//	    cqltask.WithLogger(logging.NewSlogLogger(slog.Default())),
//	)
func WithLogger(logger Logger) Option {
	return func(c *TaskConfig) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm.New() for VictoriaMetrics integration.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
func WithMetrics(collector MetricsCollector) Option {
	return func(c *TaskConfig) {
		c.Metrics = collector
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
//
// Parameters:
//   - tp: The tracer provider; nil keeps the global provider
//
// Returns:
//   - Option: Configuration option
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *TaskConfig) {
		c.TracerProvider = tp
	}
}

// WithConsistency sets the consistency level used for the query.
//
// Parameters:
//   - consistency: The consistency level
//
// Returns:
//   - Option: Configuration option
func WithConsistency(consistency Consistency) Option {
	return func(c *TaskConfig) {
		c.Consistency = consistency
	}
}

// WithTimeout sets the per-request timeout passed to the driver.
//
// Parameters:
//   - d: Request timeout
//
// Returns:
//   - Option: Configuration option
func WithTimeout(d time.Duration) Option {
	return func(c *TaskConfig) {
		c.Timeout = d
	}
}

// WithConnectTimeout sets the initial connection timeout passed to the driver.
//
// Parameters:
//   - d: Connect timeout
//
// Returns:
//   - Option: Configuration option
func WithConnectTimeout(d time.Duration) Option {
	return func(c *TaskConfig) {
		c.ConnectTimeout = d
	}
}

// WithCredentials sets the username and password handed to the driver's
// password authenticator.
//
// Parameters:
//   - username: Login name
//   - password: Password
//
// Returns:
//   - Option: Configuration option
func WithCredentials(username, password string) Option {
	return func(c *TaskConfig) {
		c.Credentials = Credentials{Username: username, Password: password}
	}
}

// WithPageSize sets the number of rows fetched per page. All pages are
// always read; this only tunes round trips.
//
// Parameters:
//   - n: Rows per page; 0 keeps the driver default
//
// Returns:
//   - Option: Configuration option
func WithPageSize(n int) Option {
	return func(c *TaskConfig) {
		c.PageSize = n
	}
}

// WithIDGenerator sets the execution ID generator.
//
// Parameters:
//   - fn: Function returning a new identifier per call
//
// Returns:
//   - Option: Configuration option
func WithIDGenerator(fn IDGenerator) Option {
	return func(c *TaskConfig) {
		c.IDGenerator = fn
	}
}
