package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "logspool"

var (
	enqueuedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "entries_enqueued_total"),
		"Entries accepted into the write queue.", nil, nil)
	droppedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "entries_dropped_total"),
		"Entries discarded because the write queue was full.", nil, nil)
	writtenDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "entries_written_total"),
		"Entries appended to the log file.", []string{"severity"}, nil)
	writeErrorsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "write_errors_total"),
		"Failed write attempts.", []string{"source"}, nil)
	queueDepthDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "queue_depth"),
		"Entries waiting in the write queue.", nil, nil)
	bytesWrittenDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "bytes_written_total"),
		"Bytes appended to log files.", nil, nil)
)

// PrometheusCollector exposes a Collector to a Prometheus registry.
type PrometheusCollector struct {
	c     *Collector
	depth func() int
}

// NewPrometheusCollector wraps c. depth reports the current queue length and
// may be nil.
func NewPrometheusCollector(c *Collector, depth func() int) *PrometheusCollector {
	return &PrometheusCollector{c: c, depth: depth}
}

// Describe implements prometheus.Collector.
func (p *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- enqueuedDesc
	ch <- droppedDesc
	ch <- writtenDesc
	ch <- writeErrorsDesc
	ch <- queueDepthDesc
	ch <- bytesWrittenDesc
}

// Collect implements prometheus.Collector.
func (p *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	depth := 0
	if p.depth != nil {
		depth = p.depth()
	}
	m := p.c.GetMetrics(depth, 0)

	ch <- prometheus.MustNewConstMetric(enqueuedDesc, prometheus.CounterValue, float64(m.EntriesEnqueued))
	ch <- prometheus.MustNewConstMetric(droppedDesc, prometheus.CounterValue, float64(m.EntriesDropped))
	for sev, n := range m.EntriesWritten {
		ch <- prometheus.MustNewConstMetric(writtenDesc, prometheus.CounterValue, float64(n), sev)
	}
	for source, n := range m.ErrorsBySource {
		ch <- prometheus.MustNewConstMetric(writeErrorsDesc, prometheus.CounterValue, float64(n), source)
	}
	ch <- prometheus.MustNewConstMetric(queueDepthDesc, prometheus.GaugeValue, float64(m.QueueDepth))
	ch <- prometheus.MustNewConstMetric(bytesWrittenDesc, prometheus.CounterValue, float64(m.BytesWritten))
}
