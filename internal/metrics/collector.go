package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector handles metrics collection for a logger.
type Collector struct {
	// Queue traffic
	entriesEnqueued uint64
	entriesDropped  uint64

	// Entries written, by severity name
	entriesWritten sync.Map // map[string]*atomic.Uint64

	// File operations
	bytesWritten uint64

	// Error metrics
	errorCount     uint64
	errorsBySource sync.Map // map[string]*atomic.Uint64

	// Performance metrics
	writeCount     uint64
	totalWriteTime int64 // nanoseconds
	maxWriteTime   int64 // nanoseconds
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Metrics contains runtime metrics for the logger.
type Metrics struct {
	EntriesEnqueued uint64            `json:"entries_enqueued"`
	EntriesDropped  uint64            `json:"entries_dropped"`
	EntriesWritten  map[string]uint64 `json:"entries_written"`

	// Queue metrics
	QueueDepth       int     `json:"queue_depth"`
	QueueCapacity    int     `json:"queue_capacity"`
	QueueUtilization float64 `json:"queue_utilization"`

	BytesWritten uint64 `json:"bytes_written"`

	// Error metrics
	ErrorCount     uint64            `json:"error_count"`
	ErrorsBySource map[string]uint64 `json:"errors_by_source"`

	// Performance metrics
	AverageWriteTime time.Duration `json:"average_write_time"`
	MaxWriteTime     time.Duration `json:"max_write_time"`
}

// GetMetrics returns current metrics snapshot.
func (c *Collector) GetMetrics(queueDepth, queueCapacity int) Metrics {
	metrics := Metrics{
		EntriesEnqueued: atomic.LoadUint64(&c.entriesEnqueued),
		EntriesDropped:  atomic.LoadUint64(&c.entriesDropped),
		EntriesWritten:  loadCounters(&c.entriesWritten),
		QueueDepth:      queueDepth,
		QueueCapacity:   queueCapacity,
		BytesWritten:    atomic.LoadUint64(&c.bytesWritten),
		ErrorCount:      atomic.LoadUint64(&c.errorCount),
		ErrorsBySource:  loadCounters(&c.errorsBySource),
	}

	// Calculate queue utilization
	if metrics.QueueCapacity > 0 {
		metrics.QueueUtilization = float64(metrics.QueueDepth) / float64(metrics.QueueCapacity)
	}

	writeCount := atomic.LoadUint64(&c.writeCount)
	if writeCount > 0 {
		metrics.AverageWriteTime = time.Duration(atomic.LoadInt64(&c.totalWriteTime)) / time.Duration(writeCount)
	}
	metrics.MaxWriteTime = time.Duration(atomic.LoadInt64(&c.maxWriteTime))

	return metrics
}

func loadCounters(m *sync.Map) map[string]uint64 {
	out := make(map[string]uint64)
	m.Range(func(key, value interface{}) bool {
		if count := value.(*atomic.Uint64).Load(); count > 0 {
			out[key.(string)] = count
		}
		return true
	})
	return out
}

// ResetMetrics resets all metrics counters.
func (c *Collector) ResetMetrics() {
	reset := func(key, value interface{}) bool {
		value.(*atomic.Uint64).Store(0)
		return true
	}
	c.entriesWritten.Range(reset)
	c.errorsBySource.Range(reset)

	atomic.StoreUint64(&c.entriesEnqueued, 0)
	atomic.StoreUint64(&c.entriesDropped, 0)
	atomic.StoreUint64(&c.bytesWritten, 0)
	atomic.StoreUint64(&c.errorCount, 0)
	atomic.StoreUint64(&c.writeCount, 0)
	atomic.StoreInt64(&c.totalWriteTime, 0)
	atomic.StoreInt64(&c.maxWriteTime, 0)
}

// TrackEnqueued increments the accepted entry counter.
func (c *Collector) TrackEnqueued() {
	atomic.AddUint64(&c.entriesEnqueued, 1)
}

// TrackDropped increments the counter of entries refused by a full queue.
func (c *Collector) TrackDropped() {
	atomic.AddUint64(&c.entriesDropped, 1)
}

// TrackWritten records one entry of the given severity reaching the file.
func (c *Collector) TrackWritten(severity string, bytes int, duration time.Duration) {
	val, _ := c.entriesWritten.LoadOrStore(severity, &atomic.Uint64{})
	val.(*atomic.Uint64).Add(1)
	c.TrackWrite(int64(bytes), duration)
}

// TrackWrite records write metrics.
func (c *Collector) TrackWrite(bytes int64, duration time.Duration) {
	if bytes > 0 {
		atomic.AddUint64(&c.bytesWritten, uint64(bytes))
	}
	atomic.AddUint64(&c.writeCount, 1)
	atomic.AddInt64(&c.totalWriteTime, int64(duration))

	// Update max write time
	for {
		oldMax := atomic.LoadInt64(&c.maxWriteTime)
		if int64(duration) <= oldMax {
			break
		}
		if atomic.CompareAndSwapInt64(&c.maxWriteTime, oldMax, int64(duration)) {
			break
		}
	}
}

// TrackError increments the error counter and tracks by source.
func (c *Collector) TrackError(source string) {
	atomic.AddUint64(&c.errorCount, 1)

	val, _ := c.errorsBySource.LoadOrStore(source, &atomic.Uint64{})
	val.(*atomic.Uint64).Add(1)
}

// GetWrittenCount returns the number of entries written at a severity.
func (c *Collector) GetWrittenCount(severity string) uint64 {
	if val, ok := c.entriesWritten.Load(severity); ok {
		return val.(*atomic.Uint64).Load()
	}
	return 0
}

// GetErrorCount returns the total error count.
func (c *Collector) GetErrorCount() uint64 {
	return atomic.LoadUint64(&c.errorCount)
}

// GetErrorCountBySource returns the error count for a specific source.
func (c *Collector) GetErrorCountBySource(source string) uint64 {
	if val, ok := c.errorsBySource.Load(source); ok {
		return val.(*atomic.Uint64).Load()
	}
	return 0
}

// Stats represents basic statistics
type Stats struct {
	EnqueuedCount uint64
	WriteCount    uint64
	ErrorCount    uint64
	DroppedCount  uint64
	BytesWritten  uint64
}

// GetStats returns basic statistics
func (c *Collector) GetStats() Stats {
	return Stats{
		EnqueuedCount: atomic.LoadUint64(&c.entriesEnqueued),
		WriteCount:    atomic.LoadUint64(&c.writeCount),
		ErrorCount:    atomic.LoadUint64(&c.errorCount),
		DroppedCount:  atomic.LoadUint64(&c.entriesDropped),
		BytesWritten:  atomic.LoadUint64(&c.bytesWritten),
	}
}
