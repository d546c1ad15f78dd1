package logspool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/wayneeseguin/logspool/internal/metrics"
	"github.com/wayneeseguin/logspool/pkg/backends"
)

// Metrics is a snapshot of the logger counters.
type Metrics = metrics.Metrics

// Metrics returns current logger metrics.
func (l *Logger) Metrics() Metrics {
	return l.metrics.GetMetrics(l.queue.len(), l.queue.cap())
}

// ResetMetrics zeroes all counters.
func (l *Logger) ResetMetrics() {
	l.metrics.ResetMetrics()
}

// PrometheusCollector returns a collector exposing this logger's counters.
// Register it with a prometheus.Registerer; registering two loggers on the
// same registry needs a prometheus.WrapRegistererWith label.
func (l *Logger) PrometheusCollector() prometheus.Collector {
	return metrics.NewPrometheusCollector(l.metrics, l.queue.len)
}

// WriterStats returns the statistics of the file writer in use, including
// lock timeouts.
func (l *Logger) WriterStats() backends.WriterStats {
	return l.settings().writer.Stats()
}
