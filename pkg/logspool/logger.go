package logspool

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/wayneeseguin/logspool/internal/metrics"
	"github.com/wayneeseguin/logspool/pkg/backends"
	"github.com/wayneeseguin/logspool/pkg/formatters"
	"github.com/wayneeseguin/logspool/pkg/types"
)

// State is the lifecycle of the background writer.
type State int32

const (
	// StateStopped is both the initial and the terminal state.
	StateStopped State = iota
	StateRunning
	StateStopRequested
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateRunning:
		return "Running"
	case StateStopRequested:
		return "StopRequested"
	default:
		return "Unknown"
	}
}

// settings is an immutable snapshot of everything derived from a Config.
// Writes load it once so a concurrent Configure never mixes two versions.
type settings struct {
	cfg       *Config
	formatter types.Formatter
	writer    *backends.FileWriter
	sink      backends.FaultSink
	resolver  CallerResolver
}

// Logger writes entries to date-rotated files through a bounded queue and a
// single background writer.
type Logger struct {
	current  atomic.Pointer[settings]
	configMu sync.Mutex // serializes Configure and SetDirectory

	queue   *boundedQueue
	metrics *metrics.Collector

	lifeMu        sync.Mutex // guards stopCh and done
	state         atomic.Int32
	started       atomic.Bool
	noMoreEnqueue atomic.Bool
	dropping      atomic.Bool
	stopCh        chan struct{}
	done          chan struct{}

	errMu   sync.Mutex
	lastErr error
}

// New creates a Logger from DefaultConfig and the given options. The writer
// is not started until the first entry is enqueued, or until Start is called
// when the start mode is explicit.
func New(opts ...Option) (*Logger, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Logger using a copy of cfg.
func NewWithConfig(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s, err := newSettings(cfg, nil)
	if err != nil {
		return nil, err
	}
	if err := ensureDirectory(cfg.Directory, true); err != nil {
		return nil, err
	}

	l := &Logger{
		queue:   newBoundedQueue(cfg.QueueCapacity),
		metrics: metrics.NewCollector(),
	}
	l.current.Store(s)
	return l, nil
}

// newSettings derives a snapshot from cfg. The file writer is reused from
// prev when the lock timeout is unchanged so that in-process exclusion keeps
// using the same semaphore.
func newSettings(cfg *Config, prev *settings) (*settings, error) {
	f, err := formatters.New(cfg.Mode, cfg.Separator)
	if err != nil {
		return nil, NewLogError(ErrCodeInvalidConfig, "formatter", "", err)
	}

	s := &settings{cfg: cfg, formatter: f, resolver: cfg.CallerResolver}
	if s.resolver == nil {
		s.resolver = StackResolver{}
	}
	if cfg.FaultSink != nil {
		s.sink = backends.NewDedupSink(cfg.FaultSink)
	}

	if prev != nil && prev.writer.LockTimeout() == cfg.LockTimeout.Duration {
		s.writer = prev.writer
	} else {
		s.writer = backends.NewFileWriter(cfg.LockTimeout.Duration)
	}
	return s, nil
}

func ensureDirectory(dir string, create bool) error {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if !create {
			return NewLogError(ErrCodeDirectory, "directory", dir, ErrDirectoryNotFound)
		}
		// #nosec G301 - log directories need to be accessible by other processes
		if err := os.MkdirAll(dir, 0755); err != nil {
			return NewLogError(ErrCodeDirectory, "directory", dir, errors.Wrap(err, "create directory"))
		}
		return nil
	case err != nil:
		return NewLogError(ErrCodeDirectory, "directory", dir, errors.Wrap(err, "stat directory"))
	case !info.IsDir():
		return NewLogError(ErrCodeDirectory, "directory", dir, errors.Errorf("%s is not a directory", dir))
	}
	return nil
}

func (l *Logger) settings() *settings {
	return l.current.Load()
}

// Config returns a copy of the active configuration.
func (l *Logger) Config() *Config {
	return l.settings().cfg.Clone()
}

// Configure applies opts to a copy of the active configuration. The new
// configuration replaces the old one only if it validates, its directory can
// be created and, when Check is set, a test entry can be written. The queue
// capacity cannot be changed after New.
func (l *Logger) Configure(opts ...Option) error {
	l.configMu.Lock()
	defer l.configMu.Unlock()

	prev := l.settings()
	next := prev.cfg.Clone()
	for _, opt := range opts {
		if err := opt(next); err != nil {
			return err
		}
	}
	next.QueueCapacity = prev.cfg.QueueCapacity
	if err := next.Validate(); err != nil {
		return err
	}
	if err := ensureDirectory(next.Directory, true); err != nil {
		return err
	}

	s, err := newSettings(next, prev)
	if err != nil {
		return err
	}
	if next.Check {
		if err := l.verify(s, VerifyMessage); err != nil {
			return err
		}
	}

	l.current.Store(s)
	return nil
}

// SetDirectory changes the log directory. An empty dir selects the current
// working directory. A missing directory is created only when
// createIfMissing is true; on any failure the previous directory stays in
// effect.
func (l *Logger) SetDirectory(dir string, createIfMissing bool) error {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return NewLogError(ErrCodeDirectory, "set_directory", "", errors.Wrap(err, "get working directory"))
		}
		dir = wd
	}
	dir = filepath.Clean(dir)

	if err := ensureDirectory(dir, createIfMissing); err != nil {
		return err
	}

	l.configMu.Lock()
	defer l.configMu.Unlock()

	prev := l.settings()
	next := prev.cfg.Clone()
	next.Directory = dir
	s, err := newSettings(next, prev)
	if err != nil {
		return err
	}
	l.current.Store(s)
	return nil
}

// State returns the current writer state.
func (l *Logger) State() State {
	return State(l.state.Load())
}

// Started reports whether the background writer has ever been started.
func (l *Logger) Started() bool {
	return l.started.Load()
}

// Pending returns the number of entries waiting to be written, including the
// one being written.
func (l *Logger) Pending() int {
	return l.queue.len()
}

// Start launches the background writer. It is a no-op while the writer is
// running, and after Stop has been called.
func (l *Logger) Start() {
	if l.noMoreEnqueue.Load() || l.State() != StateStopped {
		return
	}

	l.lifeMu.Lock()
	defer l.lifeMu.Unlock()

	if l.noMoreEnqueue.Load() || l.State() != StateStopped {
		return
	}

	l.setLastError(nil)
	l.stopCh = make(chan struct{})
	l.done = make(chan struct{})
	l.state.Store(int32(StateRunning))
	l.started.Store(true)

	go l.run(l.stopCh, l.done)
}

// Stop refuses further queued entries, drains the queue first when flush is
// true, then asks the writer to exit and waits for it at most the stop
// timeout. Synchronous writes keep working after Stop.
func (l *Logger) Stop(flush bool) error {
	l.noMoreEnqueue.Store(true)

	// Start checks noMoreEnqueue under lifeMu, so once we hold it a writer
	// is either visible here or will never be launched.
	l.lifeMu.Lock()
	stopped := l.State() == StateStopped
	l.lifeMu.Unlock()
	if stopped {
		return nil
	}

	if flush {
		l.Flush()
	}

	l.lifeMu.Lock()
	if l.state.CompareAndSwap(int32(StateRunning), int32(StateStopRequested)) {
		close(l.stopCh)
	}
	done := l.done
	l.lifeMu.Unlock()

	if done == nil {
		return nil
	}

	timeout := l.settings().cfg.Tuning.StopTimeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return NewLogError(ErrCodeShutdownTimeout, "stop", "", ErrStopTimeout).
			WithContext("timeout", timeout.String())
	}
}

// Shutdown is Stop(true) bounded by ctx. Hosts must call it before exiting.
func (l *Logger) Shutdown(ctx context.Context) error {
	done := make(chan error, 1)

	go func() {
		done <- l.Stop(true)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return NewLogError(ErrCodeShutdownTimeout, "shutdown", "", ctx.Err())
	}
}

// Flush waits until the queue is empty. It polls the queue length and gives
// up when the length did not change between two polls, so a stuck writer
// cannot block it forever. It is a no-op unless the writer is running.
func (l *Logger) Flush() {
	if l.State() != StateRunning {
		return
	}

	poll := l.settings().cfg.Tuning.FlushPoll
	for last := l.queue.len(); last > 0; {
		time.Sleep(poll)
		n := l.queue.len()
		if n == last {
			break
		}
		last = n
	}
}

// ClearQueue discards every pending entry. The lifecycle is unaffected.
func (l *Logger) ClearQueue() {
	l.queue.clear()
}

// LastBackgroundError returns the outcome of the most recent background
// write attempt: nil after a success.
func (l *Logger) LastBackgroundError() error {
	l.errMu.Lock()
	defer l.errMu.Unlock()
	return l.lastErr
}

func (l *Logger) setLastError(err error) {
	l.errMu.Lock()
	l.lastErr = err
	l.errMu.Unlock()
}

func (l *Logger) handleError(code ErrorCode, op, path string, err error) {
	if h := l.settings().cfg.ErrorHandler; h != nil {
		h(NewLogError(code, op, path, err))
	}
}
