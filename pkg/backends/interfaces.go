package backends

import (
	"time"
)

// Writer appends one serialized entry to the file at path. Implementations
// must be safe for concurrent use and hold exclusive access to the file for
// the duration of the call.
type Writer interface {
	Write(path string, line []byte) error
}

// FaultSink receives background write failures out of band, so they stay
// visible when the log file itself cannot be written.
type FaultSink interface {
	Report(msg string) error
}

// WriterStats represents statistics for a file writer
type WriterStats struct {
	WriteCount     uint64
	BytesWritten   uint64
	ErrorCount     uint64
	BusyCount      uint64
	LastError      time.Time
	TotalWriteTime time.Duration
	MaxWriteTime   time.Duration
}
