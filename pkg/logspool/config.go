package logspool

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/wayneeseguin/logspool/pkg/backends"
	"github.com/wayneeseguin/logspool/pkg/types"
)

// Defaults applied by DefaultConfig.
const (
	DefaultQueueCapacity = 10000
	DefaultDateFormat    = "yyyy_MM_dd"
	DefaultExtension     = "log"
	DefaultSeparator     = " | "
	DefaultLockTimeout   = backends.DefaultLockTimeout
)

// Environment variables read by ApplyEnv.
const (
	EnvDirectory = "LOGSPOOL_DIR"
	EnvLevel     = "LOGSPOOL_LEVEL"
)

// Duration is a time.Duration that reads and writes as a string such as
// "5s" in TOML files.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Tuning holds the timing constants of the background writer. The defaults
// match the documented contract; tests shorten them.
type Tuning struct {
	IdleWait         time.Duration // wait on an empty queue before peeking again
	MaxAttempts      int           // write attempts per entry
	RetryDelay       time.Duration // pause between attempts
	BacklogThreshold int           // queue length above which retries stop early
	StopTimeout      time.Duration // bounded join in Stop
	FlushPoll        time.Duration // queue polling interval in Flush
}

// DefaultTuning returns the standard writer timings.
func DefaultTuning() Tuning {
	return Tuning{
		IdleWait:         100 * time.Millisecond,
		MaxAttempts:      10,
		RetryDelay:       100 * time.Millisecond,
		BacklogThreshold: 1000,
		StopTimeout:      1000 * time.Millisecond,
		FlushPoll:        222 * time.Millisecond,
	}
}

func (t *Tuning) applyDefaults() {
	d := DefaultTuning()
	if t.IdleWait <= 0 {
		t.IdleWait = d.IdleWait
	}
	if t.MaxAttempts <= 0 {
		t.MaxAttempts = d.MaxAttempts
	}
	if t.RetryDelay < 0 {
		t.RetryDelay = d.RetryDelay
	}
	if t.BacklogThreshold <= 0 {
		t.BacklogThreshold = d.BacklogThreshold
	}
	if t.StopTimeout <= 0 {
		t.StopTimeout = d.StopTimeout
	}
	if t.FlushPoll <= 0 {
		t.FlushPoll = d.FlushPoll
	}
}

// Config contains all configuration options for a Logger.
//
// A Logger reads its configuration on every write. Change it through
// Configure or SetDirectory, never by mutating a Config already handed to
// New.
type Config struct {
	// File naming
	Directory  string `toml:"directory"`
	Prefix     string `toml:"prefix" validate:"excludesall=/\\"`
	Suffix     string `toml:"suffix" validate:"excludesall=/\\"`
	Extension  string `toml:"extension" validate:"required,excludesall=/\\"`
	DateFormat string `toml:"date_format" validate:"required"`

	// Output
	Mode      types.OutputMode `toml:"mode" validate:"oneof=xml text"`
	Separator string           `toml:"separator"`
	Level     types.Severity   `toml:"level" validate:"min=0,max=3"`

	// Writer
	Start         types.StartMode `toml:"start" validate:"oneof=auto explicit"`
	Background    bool            `toml:"background"`
	QueueCapacity int             `toml:"queue_capacity" validate:"min=1"`
	LockTimeout   Duration        `toml:"lock_timeout"`

	// Check writes a test entry synchronously whenever Configure applies
	// this configuration.
	Check bool `toml:"check"`

	Tuning         Tuning             `toml:"-"`
	ErrorHandler   ErrorHandler       `toml:"-"`
	FaultSink      backends.FaultSink `toml:"-"`
	CallerResolver CallerResolver     `toml:"-"`
}

// DefaultConfig returns a Config with the documented defaults: current
// directory, daily "yyyy_MM_dd.log" files, XML output, Info threshold,
// automatic start and background writing enabled.
func DefaultConfig() *Config {
	return &Config{
		Extension:     DefaultExtension,
		DateFormat:    DefaultDateFormat,
		Mode:          types.OutputXML,
		Separator:     DefaultSeparator,
		Level:         types.SeverityInfo,
		Start:         types.StartAuto,
		Background:    true,
		QueueCapacity: DefaultQueueCapacity,
		LockTimeout:   Duration{DefaultLockTimeout},
		Tuning:        DefaultTuning(),
		ErrorHandler:  defaultErrorHandler(),
	}
}

// Clone returns a shallow copy of c.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Validate normalizes c, fills unset values with defaults and checks the
// result. Errors are returned as *LogError wrapping ValidationErrors.
func (c *Config) Validate() error {
	c.Mode = types.OutputMode(strings.ToLower(string(c.Mode)))
	c.Start = types.StartMode(strings.ToLower(string(c.Start)))
	c.Extension = strings.TrimPrefix(c.Extension, ".")

	if c.Mode == "" {
		c.Mode = types.OutputXML
	}
	if c.Start == "" {
		c.Start = types.StartAuto
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = DefaultQueueCapacity
	}
	if c.LockTimeout.Duration <= 0 {
		c.LockTimeout.Duration = DefaultLockTimeout
	}
	if c.ErrorHandler == nil {
		c.ErrorHandler = defaultErrorHandler()
	}
	c.Tuning.applyDefaults()

	if err := validate.Struct(c); err != nil {
		return NewLogError(ErrCodeInvalidConfig, "validate", "", convertValidatorErrors(err))
	}
	return nil
}

// ApplyEnv overrides the directory and severity threshold from LOGSPOOL_DIR
// and LOGSPOOL_LEVEL when they are set.
func (c *Config) ApplyEnv() error {
	if dir, ok := os.LookupEnv(EnvDirectory); ok && dir != "" {
		c.Directory = dir
	}
	if level, ok := os.LookupEnv(EnvLevel); ok && level != "" {
		sev, err := types.ParseSeverity(level)
		if err != nil {
			return NewLogError(ErrCodeInvalidConfig, "env", "", err).WithContext("variable", EnvLevel)
		}
		c.Level = sev
	}
	return nil
}

// LoadConfig reads a TOML configuration file on top of DefaultConfig. A
// missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, NewLogError(ErrCodeInvalidConfig, "load", path, errors.Wrap(err, "reading config file"))
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, NewLogError(ErrCodeInvalidConfig, "load", path, errors.Wrap(err, "unmarshaling config"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidationError is a single invalid field.
type ValidationError struct {
	FieldPath string // TOML key of the field
	Message   string
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):", len(ve)))
	for _, err := range ve {
		sb.WriteString(fmt.Sprintf(" %s: %s;", err.FieldPath, err.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// Is lets errors.Is(err, ErrInvalidConfig) match validation failures.
func (ve ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their TOML key
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func convertValidatorErrors(err error) ValidationErrors {
	var out ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			out = append(out, ValidationError{
				FieldPath: e.Field(),
				Message:   validationMessage(e),
			})
		}
		return out
	}

	return ValidationErrors{{FieldPath: "", Message: err.Error()}}
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "excludesall":
		return "must not contain path separators"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}
