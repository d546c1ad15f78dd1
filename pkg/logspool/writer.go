package logspool

import (
	"time"

	"github.com/wayneeseguin/logspool/internal/utils"
	"github.com/wayneeseguin/logspool/pkg/formatters"
	"github.com/wayneeseguin/logspool/pkg/types"
)

// VerifyMessage is the entry written by Verify when no message is given.
const VerifyMessage = "Test entry to see if logging works."

// run is the background writer. It owns the head of the queue: an entry is
// removed only after it was written or its attempts ran out.
func (l *Logger) run(stop <-chan struct{}, done chan<- struct{}) {
	defer func() {
		l.state.Store(int32(StateStopped))
		close(done)
	}()

	for {
		select {
		case <-stop:
			return
		default:
		}

		entry := l.queue.peek()
		if entry == nil {
			select {
			case <-stop:
				return
			case <-l.queue.notify:
			case <-time.After(l.settings().cfg.Tuning.IdleWait):
			}
			continue
		}

		if !l.writeWithRetry(entry, stop) {
			return
		}
		l.queue.pop()
	}
}

// writeWithRetry attempts to write entry up to MaxAttempts times. Every
// attempt's outcome lands in the last-error slot and failures are reported to
// the fault sink. Retries end early once the backlog grows past the
// threshold. It returns false when stop was closed during a retry pause; the
// entry then stays queued.
func (l *Logger) writeWithRetry(entry *types.LogEntry, stop <-chan struct{}) bool {
	tuning := l.settings().cfg.Tuning

	for attempt := 1; attempt <= tuning.MaxAttempts; attempt++ {
		err := l.writeEntry(l.settings(), entry)
		l.setLastError(err)
		if err == nil {
			return true
		}

		l.reportFault(err)

		if attempt == tuning.MaxAttempts || l.queue.len() > tuning.BacklogThreshold {
			l.handleError(ErrCodeWrite, "background_write", "", err)
			return true
		}

		select {
		case <-stop:
			return false
		case <-time.After(tuning.RetryDelay):
		}
	}
	return true
}

// writeEntry formats entry with the given settings and appends it to the
// file of the current date.
func (l *Logger) writeEntry(s *settings, entry *types.LogEntry) error {
	line, err := s.formatter.Format(entry)
	if err != nil {
		l.metrics.TrackError("format")
		return NewLogError(ErrCodeFormat, "format", "", err)
	}

	start := time.Now()
	path := s.cfg.ResolvePath(start)
	if err := s.writer.Write(path, line); err != nil {
		l.metrics.TrackError("write")
		return err
	}

	l.metrics.TrackWritten(entry.Severity.String(), len(line)+1, time.Since(start))
	return nil
}

// reportFault forwards a background write failure, rendered as an XML fault
// tree, to the configured sink. Sink errors go to the ErrorHandler.
func (l *Logger) reportFault(err error) {
	sink := l.settings().sink
	if sink == nil {
		return
	}

	msg, ferr := formatters.FaultXML(faultOf(err))
	if ferr != nil || len(msg) == 0 {
		msg = []byte(err.Error())
	}
	if serr := sink.Report(string(msg)); serr != nil {
		l.metrics.TrackError("sink")
		l.handleError(ErrCodeSink, "report", "", serr)
	}
}

// Verify writes one entry synchronously, bypassing the queue and the
// severity filter, and returns the write error. The default message is
// VerifyMessage.
func (l *Logger) Verify(message ...string) error {
	return l.verify(l.settings(), message...)
}

func (l *Logger) verify(s *settings, message ...string) error {
	msg := VerifyMessage
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}

	source := s.resolver.ResolveCaller(0)
	entry := types.NewMessageEntry(types.SeverityInfo, source, utils.GoroutineID(), msg)
	return l.writeEntry(s, entry)
}
