// Package metrics provides internal metrics utilities for cqltask.
package metrics

import "github.com/arloliu/cqltask/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is configured,
// avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// ----------------------
// Connections
// ----------------------

// IncConnectTotal discards the metric.
func (m *NopMetrics) IncConnectTotal() {}

// IncConnectError discards the metric.
func (m *NopMetrics) IncConnectError() {}

// ----------------------
// Queries
// ----------------------

// IncQueryTotal discards the metric.
func (m *NopMetrics) IncQueryTotal() {}

// IncQueryError discards the metric.
func (m *NopMetrics) IncQueryError() {}

// ObserveQueryDuration discards the metric.
func (m *NopMetrics) ObserveQueryDuration(_ float64) {}

// ----------------------
// Results
// ----------------------

// AddRowsReturned discards the metric.
func (m *NopMetrics) AddRowsReturned(_ int) {}

// AddServerWarnings discards the metric.
func (m *NopMetrics) AddServerWarnings(_ int) {}
