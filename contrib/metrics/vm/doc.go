// Package vm provides a VictoriaMetrics-based implementation of the MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with default prefix "cqltask":
//
//	collector := vm.New()
//	executor, err := cqltask.NewExecutor(cqltask.WithMetrics(collector))
//	if err != nil {
//		return err
//	}
//
// # Exposing Metrics
//
// Long-running processes can serve metrics via HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
//
// One-shot processes (such as the cqlexec command) can dump them to a file
// picked up by a textfile collector:
//
//	collector.WritePrometheus(f)
//
// # Metrics Provided
//
//   - {prefix}_connect_total - Counter of session open attempts
//   - {prefix}_connect_errors_total - Counter of failed session opens
//   - {prefix}_query_total - Counter of executed queries
//   - {prefix}_query_errors_total - Counter of failed queries
//   - {prefix}_query_duration_seconds - Histogram of query latencies
//   - {prefix}_rows_returned_total - Counter of rows returned
//   - {prefix}_server_warnings_total - Counter of server warnings received
package vm
