package vm

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"github.com/arloliu/cqltask/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "cqltask"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithConstLabels attaches fixed labels to every metric.
//
// Parameters:
//   - labels: Label names and values, e.g. {"job": "nightly_export"}
//
// Returns:
//   - Option: A configuration option
//
// Example:
//
//	collector := vm.New(vm.WithConstLabels(map[string]string{"driver": "v2"}))
func WithConstLabels(labels map[string]string) Option {
	return func(c *Collector) {
		c.labels = labels
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// All metrics are pre-created at initialization time.
// Thread-safe for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string
	labels map[string]string

	connectTotal  *metrics.Counter
	connectErrors *metrics.Counter

	queryTotal    *metrics.Counter
	queryErrors   *metrics.Counter
	queryDuration *metrics.Histogram

	rowsReturned   *metrics.Counter
	serverWarnings *metrics.Counter
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally
// unless WithMetricsSet is given.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	executor, err := cqltask.NewExecutor(cqltask.WithMetrics(collector))
//	if err != nil {
//		return err
//	}
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "cqltask",
	}

	for _, opt := range opts {
		opt(c)
	}

	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates all metrics with the configured prefix and labels.
func (c *Collector) initMetrics() {
	name := func(metric string) string {
		return fmt.Sprintf("%s_%s%s", c.prefix, metric, c.labelString())
	}

	c.connectTotal = c.set.NewCounter(name("connect_total"))
	c.connectErrors = c.set.NewCounter(name("connect_errors_total"))

	c.queryTotal = c.set.NewCounter(name("query_total"))
	c.queryErrors = c.set.NewCounter(name("query_errors_total"))
	c.queryDuration = c.set.NewHistogram(name("query_duration_seconds"))

	c.rowsReturned = c.set.NewCounter(name("rows_returned_total"))
	c.serverWarnings = c.set.NewCounter(name("server_warnings_total"))
}

// labelString renders const labels in name order, e.g. {a="1",b="2"}.
func (c *Collector) labelString() string {
	if len(c.labels) == 0 {
		return ""
	}

	keys := make([]string, 0, len(c.labels))
	for k := range c.labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%q", k, c.labels[k])
	}

	return "{" + strings.Join(pairs, ",") + "}"
}

// Set returns the underlying metrics set.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler is an HTTP handler that writes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus text format to w.
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// ----------------------
// Connections
// ----------------------

// IncConnectTotal increments the session open attempts counter.
func (c *Collector) IncConnectTotal() {
	c.connectTotal.Inc()
}

// IncConnectError increments the failed session open counter.
func (c *Collector) IncConnectError() {
	c.connectErrors.Inc()
}

// ----------------------
// Queries
// ----------------------

// IncQueryTotal increments the executed queries counter.
func (c *Collector) IncQueryTotal() {
	c.queryTotal.Inc()
}

// IncQueryError increments the failed queries counter.
func (c *Collector) IncQueryError() {
	c.queryErrors.Inc()
}

// ObserveQueryDuration records a query duration in seconds.
func (c *Collector) ObserveQueryDuration(seconds float64) {
	c.queryDuration.Update(seconds)
}

// ----------------------
// Results
// ----------------------

// AddRowsReturned adds n to the returned rows counter.
func (c *Collector) AddRowsReturned(n int) {
	if n > 0 {
		c.rowsReturned.Add(n)
	}
}

// AddServerWarnings adds n to the server warnings counter.
func (c *Collector) AddServerWarnings(n int) {
	if n > 0 {
		c.serverWarnings.Add(n)
	}
}
