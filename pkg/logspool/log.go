package logspool

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/wayneeseguin/logspool/internal/utils"
	"github.com/wayneeseguin/logspool/pkg/fault"
	"github.com/wayneeseguin/logspool/pkg/types"
)

// Log writes message at the given severity. By default the entry is queued
// for the background writer and Log returns nil immediately; with Sync() or
// when background writing is disabled the entry is written before Log
// returns, and the write error is returned. Empty messages and entries below
// the configured level are ignored; an undefined severity is an error.
func (l *Logger) Log(message string, sev types.Severity, opts ...LogOption) error {
	if message == "" {
		return nil
	}
	return l.emit(sev, opts, func(source string, tid int64) *types.LogEntry {
		return types.NewMessageEntry(sev, source, tid, message)
	})
}

// LogFault writes err and its whole cause chain as a fault tree at Fault
// severity. A nil err is ignored.
func (l *Logger) LogFault(err error, opts ...LogOption) error {
	if err == nil {
		return nil
	}
	return l.emit(types.SeverityFault, opts, func(source string, tid int64) *types.LogEntry {
		return types.NewFaultEntry(types.SeverityFault, source, tid, faultOf(err))
	})
}

// Info logs a message at Info severity.
func (l *Logger) Info(message string, opts ...LogOption) error {
	return l.Log(message, types.SeverityInfo, opts...)
}

// Warning logs a message at Warning severity.
func (l *Logger) Warning(message string, opts ...LogOption) error {
	return l.Log(message, types.SeverityWarning, opts...)
}

// Error logs a message at Error severity.
func (l *Logger) Error(message string, opts ...LogOption) error {
	return l.Log(message, types.SeverityError, opts...)
}

// Infof logs a formatted message at Info severity.
func (l *Logger) Infof(format string, args ...interface{}) error {
	return l.Log(fmt.Sprintf(format, args...), types.SeverityInfo)
}

// Warningf logs a formatted message at Warning severity.
func (l *Logger) Warningf(format string, args ...interface{}) error {
	return l.Log(fmt.Sprintf(format, args...), types.SeverityWarning)
}

// Errorf logs a formatted message at Error severity.
func (l *Logger) Errorf(format string, args ...interface{}) error {
	return l.Log(fmt.Sprintf(format, args...), types.SeverityError)
}

// emit applies the severity filter, builds the entry and routes it to the
// queue or the synchronous writer.
func (l *Logger) emit(sev types.Severity, opts []LogOption, build func(source string, tid int64) *types.LogEntry) error {
	if !sev.Valid() {
		return NewLogError(ErrCodeInvalidConfig, "log", "", ErrInvalidSeverity).
			WithContext("severity", int(sev))
	}

	s := l.settings()
	if sev < s.cfg.Level {
		return nil
	}

	var o logOptions
	for _, opt := range opts {
		opt(&o)
	}

	source := o.caller
	if source == "" {
		source = s.resolver.ResolveCaller(o.skip)
	}
	entry := build(source, utils.GoroutineID())

	if o.sync || !s.cfg.Background {
		return l.writeEntry(s, entry)
	}
	l.enqueue(entry)
	return nil
}

// enqueue hands entry to the background writer, starting it first in auto
// mode. After Stop it does nothing. A full queue drops the entry; the first
// drop after a successful push is reported to the ErrorHandler.
func (l *Logger) enqueue(entry *types.LogEntry) {
	if l.noMoreEnqueue.Load() {
		return
	}

	if l.settings().cfg.Start == types.StartAuto && l.State() == StateStopped {
		l.Start()
	}

	if l.queue.push(entry) {
		l.metrics.TrackEnqueued()
		l.dropping.Store(false)
		return
	}

	l.metrics.TrackDropped()
	if l.dropping.CompareAndSwap(false, true) {
		l.handleError(ErrCodeQueueFull, "enqueue", "", errors.Errorf("queue full at %d entries, dropping", l.queue.cap()))
	}
}

// faultOf converts err into a fault tree, falling back to a bare leaf.
func faultOf(err error) *fault.Node {
	if node := fault.FromError(err); node != nil {
		return node
	}
	return &fault.Node{Kind: fault.KindGeneric, Type: fmt.Sprintf("%T", err), Message: err.Error()}
}
