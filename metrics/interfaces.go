// Package metrics provides Prometheus-compatible metrics for signupd.
//
// The package supports two modes of operation:
//   - Scrape mode: metrics are registered with a Prometheus registry and served at /metrics
//   - Push mode: each update is queued and sent by a background writer to a Prometheus remote write endpoint (e.g. VictoriaMetrics)
//
// Service code only sees the Registry interface and the Service type built on it,
// so it doesn't care which mode is in use.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Gauge is a metric that represents a single numerical value that can go up and down.
type Gauge interface {
	// Set sets the Gauge to the given value.
	Set(float64)
}

// Counter is a metric that represents a single monotonically increasing counter.
type Counter interface {
	// Inc increments the counter by 1.
	Inc()
	// Add adds the given value to the counter. It panics if the value is negative.
	Add(float64)
}

// GaugeVec is a Gauge with labels.
type GaugeVec interface {
	// With returns the Gauge for the given Labels.
	With(prometheus.Labels) Gauge
}

// CounterVec is a Counter with labels.
type CounterVec interface {
	// With returns the Counter for the given Labels.
	With(prometheus.Labels) Counter
}

// Registry creates and registers metrics.
type Registry interface {
	NewGauge(opts prometheus.GaugeOpts) (Gauge, error)
	NewGaugeVec(opts prometheus.GaugeOpts, labels []string) (GaugeVec, error)
	NewCounter(opts prometheus.CounterOpts) (Counter, error)
	NewCounterVec(opts prometheus.CounterOpts, labels []string) (CounterVec, error)
}
