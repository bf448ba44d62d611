package types

// MetricsCollector defines methods for collecting operational metrics.
//
// Implementations should be thread-safe as a collector may be shared by
// executors running in different goroutines.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/arloliu/cqltask/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	executor, err := cqltask.NewExecutor(cqltask.WithMetrics(collector))
//	if err != nil {
//		return err
//	}
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Connections
	// ----------------------

	// IncConnectTotal increments the session open attempts counter.
	IncConnectTotal()

	// IncConnectError increments the failed session open counter.
	IncConnectError()

	// ----------------------
	// Queries
	// ----------------------

	// IncQueryTotal increments the executed queries counter.
	IncQueryTotal()

	// IncQueryError increments the failed queries counter.
	IncQueryError()

	// ObserveQueryDuration records a query execution duration in seconds,
	// measured from dispatch until all rows were read.
	ObserveQueryDuration(seconds float64)

	// ----------------------
	// Results
	// ----------------------

	// AddRowsReturned adds n to the returned rows counter.
	AddRowsReturned(n int)

	// AddServerWarnings adds n to the server warnings counter.
	AddServerWarnings(n int)
}
