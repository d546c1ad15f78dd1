package backends

import (
	"context"
	"os"
	"os/user"
	"strconv"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/wayneeseguin/logspool/pkg/fault"
)

// DefaultLockTimeout bounds how long a write waits for exclusive access.
const DefaultLockTimeout = 5 * time.Second

// DefaultLockRetry is the flock polling interval while another process holds
// the file.
const DefaultLockRetry = 10 * time.Millisecond

// ErrFileBusy is returned when exclusive access could not be obtained in time.
// Nothing is written and the call does not retry.
var ErrFileBusy = errors.New("log file busy")

// Fault data keys attached to write failures.
const (
	DataFilename = "Filename"
	DataUsername = "Username"
	DataDiskFull = "DiskFull"
)

// FileWriter appends lines to log files. Writers in this process serialize on
// a one-slot semaphore; other processes are excluded with an advisory flock
// on the file itself. The file is opened and closed on every write, so the
// target path may change between calls.
type FileWriter struct {
	sem         chan struct{}
	lockTimeout time.Duration
	lockRetry   time.Duration

	mu    sync.Mutex
	stats WriterStats
}

var _ Writer = (*FileWriter)(nil)

// NewFileWriter creates a file writer. A non-positive timeout selects
// DefaultLockTimeout.
func NewFileWriter(lockTimeout time.Duration) *FileWriter {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &FileWriter{
		sem:         make(chan struct{}, 1),
		lockTimeout: lockTimeout,
		lockRetry:   DefaultLockRetry,
	}
}

// LockTimeout returns the configured wait for exclusive access.
func (w *FileWriter) LockTimeout() time.Duration {
	return w.lockTimeout
}

// Write appends line and a newline to the file at path.
func (w *FileWriter) Write(path string, line []byte) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), w.lockTimeout)
	defer cancel()

	select {
	case w.sem <- struct{}{}:
	case <-ctx.Done():
		return w.busy(path)
	}
	defer func() { <-w.sem }()

	// #nosec G302 - log files need to be readable
	lock := flock.New(path, flock.SetPermissions(0644))
	locked, err := lock.TryLockContext(ctx, w.lockRetry)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return w.fail(path, errors.Wrap(err, "lock log file"))
	}
	if !locked {
		return w.busy(path)
	}
	defer func() {
		_ = lock.Unlock() // Best effort unlock, also closes the lock handle
	}()

	// #nosec G302 - log files need to be readable
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return w.fail(path, errors.Wrap(err, "open log file"))
	}

	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')

	n, err := file.Write(buf)
	if err != nil {
		_ = file.Close() // Best effort close on error path
		return w.fail(path, errors.Wrap(err, "write log file"))
	}
	if err := file.Close(); err != nil {
		return w.fail(path, errors.Wrap(err, "close log file"))
	}

	w.recordWrite(n, time.Since(start))
	return nil
}

// Stats returns a snapshot of the writer statistics.
func (w *FileWriter) Stats() WriterStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *FileWriter) busy(path string) error {
	w.mu.Lock()
	w.stats.BusyCount++
	w.stats.ErrorCount++
	w.stats.LastError = time.Now()
	w.mu.Unlock()

	err := errors.Wrapf(ErrFileBusy, "could not lock %s within %s", path, w.lockTimeout)
	return fault.WithData(err, map[string]string{DataFilename: path})
}

func (w *FileWriter) fail(path string, err error) error {
	w.mu.Lock()
	w.stats.ErrorCount++
	w.stats.LastError = time.Now()
	w.mu.Unlock()

	data := map[string]string{DataFilename: path}
	if name := currentUsername(); name != "" {
		data[DataUsername] = name
	}
	if IsDiskFull(err) {
		data[DataDiskFull] = strconv.FormatBool(true)
	}
	return fault.WithData(err, data)
}

func (w *FileWriter) recordWrite(n int, elapsed time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stats.WriteCount++
	if n > 0 {
		w.stats.BytesWritten += uint64(n)
	}
	w.stats.TotalWriteTime += elapsed
	if elapsed > w.stats.MaxWriteTime {
		w.stats.MaxWriteTime = elapsed
	}
}

var (
	usernameOnce sync.Once
	username     string
)

func currentUsername() string {
	usernameOnce.Do(func() {
		if u, err := user.Current(); err == nil {
			username = u.Username
		}
	})
	return username
}
