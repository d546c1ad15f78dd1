package backends

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	_ FaultSink = (*StderrSink)(nil)
	_ FaultSink = (*DedupSink)(nil)
	_ FaultSink = (*SyslogSink)(nil)
)

// StderrSink writes each fault to a stream, stderr by default.
type StderrSink struct {
	W  io.Writer
	mu sync.Mutex
}

// NewStderrSink creates a sink writing to os.Stderr.
func NewStderrSink() *StderrSink {
	return &StderrSink{W: os.Stderr}
}

// Report implements FaultSink.
func (s *StderrSink) Report(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.W
	if w == nil {
		w = os.Stderr
	}
	_, err := fmt.Fprintf(w, "logspool: %s\n", msg)
	return err
}

// DedupSink drops a report whose text equals the one reported just before it.
type DedupSink struct {
	next FaultSink
	mu   sync.Mutex
	last string
	seen bool
}

// NewDedupSink wraps next. A nil next yields a nil sink.
func NewDedupSink(next FaultSink) *DedupSink {
	if next == nil {
		return nil
	}
	return &DedupSink{next: next}
}

// Report implements FaultSink.
func (d *DedupSink) Report(msg string) error {
	d.mu.Lock()
	if d.seen && msg == d.last {
		d.mu.Unlock()
		return nil
	}
	d.last, d.seen = msg, true
	d.mu.Unlock()

	return d.next.Report(msg)
}

// Unwrap returns the wrapped sink.
func (d *DedupSink) Unwrap() FaultSink {
	return d.next
}
