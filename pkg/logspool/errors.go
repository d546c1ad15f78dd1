package logspool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/wayneeseguin/logspool/pkg/backends"
)

// Common errors that can be compared with errors.Is()
var (
	// ErrFileBusy is returned when exclusive access to the log file could not
	// be obtained within the lock timeout.
	ErrFileBusy = backends.ErrFileBusy

	// ErrNoLogFile is returned when reading back a file that does not exist
	ErrNoLogFile = errors.New("log file does not exist")

	// ErrDirectoryNotFound is returned when the log directory is missing and
	// may not be created
	ErrDirectoryNotFound = errors.New("log directory not found")

	// ErrStopTimeout is returned when the background writer did not exit
	// within the stop timeout
	ErrStopTimeout = errors.New("background writer did not stop in time")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidSeverity is returned when logging at an undefined severity
	ErrInvalidSeverity = errors.New("invalid severity")
)

// ErrorCode represents specific error types in logspool
type ErrorCode int

const (
	// ErrCodeUnknown represents an unknown error
	ErrCodeUnknown ErrorCode = iota

	// Configuration errors
	ErrCodeInvalidConfig
	ErrCodeDirectory

	// Write path errors
	ErrCodeFormat
	ErrCodeWrite
	ErrCodeQueueFull
	ErrCodeSink

	// Read-back errors
	ErrCodeRead

	// Shutdown errors
	ErrCodeShutdownTimeout
)

// LogError represents a structured error with context
type LogError struct {
	Code    ErrorCode
	Op      string                 // Operation that failed (e.g., "configure", "write", "report")
	Path    string                 // File or directory path if applicable
	Err     error                  // Underlying error
	Time    time.Time              // When the error occurred
	Context map[string]interface{} // Additional context
}

// Error implements the error interface
func (e *LogError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s operation failed on %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *LogError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a LogError with the same code.
func (e *LogError) Is(target error) bool {
	if t, ok := target.(*LogError); ok {
		return e.Code == t.Code
	}
	return false
}

// NewLogError creates a new LogError
func NewLogError(code ErrorCode, op, path string, err error) *LogError {
	return &LogError{
		Code:    code,
		Op:      op,
		Path:    path,
		Err:     err,
		Time:    time.Now(),
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *LogError) WithContext(key string, value interface{}) *LogError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// ErrorHandler receives diagnostics about the logger itself: dropped entries,
// background write failures and fault sink failures. It must not log through
// the same Logger.
type ErrorHandler func(err *LogError)

// StderrErrorHandler writes errors to stderr
func StderrErrorHandler(err *LogError) {
	fmt.Fprintf(os.Stderr, "logspool error: %s\n", err.Error())
}

// SilentErrorHandler discards all errors
func SilentErrorHandler(err *LogError) {}

// ChannelErrorHandler returns an error handler that sends errors to a channel
func ChannelErrorHandler(ch chan<- *LogError) ErrorHandler {
	return func(err *LogError) {
		select {
		case ch <- err:
		default:
			// Channel full, fallback to stderr
			StderrErrorHandler(err)
		}
	}
}

// defaultErrorHandler is silent under go test and writes to stderr otherwise.
func defaultErrorHandler() ErrorHandler {
	if isTestMode() {
		return SilentErrorHandler
	}
	return StderrErrorHandler
}

func isTestMode() bool {
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, "-test.") {
			return true
		}
	}

	if exe, err := os.Executable(); err == nil {
		if strings.HasSuffix(filepath.Base(exe), ".test") {
			return true
		}
	}

	return false
}
