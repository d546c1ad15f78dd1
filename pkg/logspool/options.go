package logspool

import (
	"time"

	"github.com/wayneeseguin/logspool/pkg/backends"
	"github.com/wayneeseguin/logspool/pkg/types"
)

// Option is a functional option for configuring a Logger
type Option func(*Config) error

// WithConfig replaces the whole configuration. Later options still apply on
// top of it.
func WithConfig(cfg *Config) Option {
	return func(c *Config) error {
		if cfg == nil {
			return NewLogError(ErrCodeInvalidConfig, "config", "", ErrInvalidConfig).
				WithContext("error", "config cannot be nil")
		}
		*c = *cfg
		return nil
	}
}

// WithDirectory sets the log directory. It is created when missing.
func WithDirectory(dir string) Option {
	return func(c *Config) error {
		c.Directory = dir
		return nil
	}
}

// WithPrefix sets the text placed before the date in the file name
func WithPrefix(prefix string) Option {
	return func(c *Config) error {
		c.Prefix = prefix
		return nil
	}
}

// WithSuffix sets the text placed after the date in the file name
func WithSuffix(suffix string) Option {
	return func(c *Config) error {
		c.Suffix = suffix
		return nil
	}
}

// WithExtension sets the file extension, without the dot
func WithExtension(ext string) Option {
	return func(c *Config) error {
		c.Extension = ext
		return nil
	}
}

// WithDateFormat sets the date pattern of the file name; it determines how
// often a new file is started. See FormatDate.
func WithDateFormat(pattern string) Option {
	return func(c *Config) error {
		c.DateFormat = pattern
		return nil
	}
}

// WithMode selects XML or text output
func WithMode(mode types.OutputMode) Option {
	return func(c *Config) error {
		c.Mode = mode
		return nil
	}
}

// WithText selects text output with the given field separator
func WithText(separator string) Option {
	return func(c *Config) error {
		c.Mode = types.OutputText
		c.Separator = separator
		return nil
	}
}

// WithLevel sets the minimum severity written
func WithLevel(level types.Severity) Option {
	return func(c *Config) error {
		if !level.Valid() {
			return NewLogError(ErrCodeInvalidConfig, "config", "", ErrInvalidConfig).
				WithContext("level", int(level))
		}
		c.Level = level
		return nil
	}
}

// WithStartMode chooses between starting the writer on first enqueue and
// requiring an explicit Start
func WithStartMode(mode types.StartMode) Option {
	return func(c *Config) error {
		c.Start = mode
		return nil
	}
}

// WithBackground enables or disables the background writer. When disabled
// every call writes synchronously.
func WithBackground(enabled bool) Option {
	return func(c *Config) error {
		c.Background = enabled
		return nil
	}
}

// WithQueueCapacity sets the maximum number of pending entries. It only
// takes effect when the Logger is created.
func WithQueueCapacity(capacity int) Option {
	return func(c *Config) error {
		c.QueueCapacity = capacity
		return nil
	}
}

// WithLockTimeout sets how long a write waits for exclusive file access
func WithLockTimeout(d time.Duration) Option {
	return func(c *Config) error {
		c.LockTimeout = Duration{d}
		return nil
	}
}

// WithCheck makes Configure write a test entry after applying the options
func WithCheck(check bool) Option {
	return func(c *Config) error {
		c.Check = check
		return nil
	}
}

// WithTuning overrides the background writer timings. Zero fields keep
// their defaults.
func WithTuning(t Tuning) Option {
	return func(c *Config) error {
		c.Tuning = t
		return nil
	}
}

// WithFaultSink sets the out-of-band channel for background write failures
func WithFaultSink(sink backends.FaultSink) Option {
	return func(c *Config) error {
		c.FaultSink = sink
		return nil
	}
}

// WithErrorHandler sets the handler for the logger's own diagnostics
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *Config) error {
		c.ErrorHandler = handler
		return nil
	}
}

// WithCallerResolver replaces the stack-based caller resolution
func WithCallerResolver(r CallerResolver) Option {
	return func(c *Config) error {
		c.CallerResolver = r
		return nil
	}
}

// LogOption adjusts a single logging call
type LogOption func(*logOptions)

type logOptions struct {
	sync   bool
	skip   int
	caller string
}

// Sync writes the entry synchronously and returns the write error.
func Sync() LogOption {
	return func(o *logOptions) { o.sync = true }
}

// SkipFrames skips n additional stack frames when resolving the caller,
// for helpers that wrap the Logger.
func SkipFrames(n int) LogOption {
	return func(o *logOptions) {
		if n > 0 {
			o.skip += n
		}
	}
}

// WithCaller sets the Source of the entry explicitly.
func WithCaller(name string) LogOption {
	return func(o *logOptions) { o.caller = name }
}
