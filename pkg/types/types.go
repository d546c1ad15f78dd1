package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/wayneeseguin/logspool/pkg/fault"
)

// Severity orders log entries. Entries below the configured threshold are
// never written.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFault
)

// Valid reports whether s is one of the defined severities.
func (s Severity) Valid() bool {
	return s >= SeverityInfo && s <= SeverityFault
}

// String returns the name written to the Severity attribute.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "Info"
	case SeverityWarning:
		return "Warning"
	case SeverityError:
		return "Error"
	case SeverityFault:
		return "Fault"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity parses a severity name case-insensitively. "Exception" is
// accepted as an alias for Fault.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	case "fault", "exception":
		return SeverityFault, nil
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q", name)
}

// MarshalText implements encoding.TextMarshaler so severities read naturally
// in TOML configuration files.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// OutputMode selects the on-disk representation of entries.
type OutputMode string

const (
	OutputXML  OutputMode = "xml"
	OutputText OutputMode = "text"
)

// StartMode controls whether the background writer starts on first enqueue.
type StartMode string

const (
	StartAuto     StartMode = "auto"
	StartExplicit StartMode = "explicit"
)

// LogEntry is one unit of log data. It is created at the call site and never
// mutated afterwards; exactly one of Message and Fault is set.
type LogEntry struct {
	Timestamp time.Time
	Severity  Severity
	Source    string
	ThreadID  int64
	Message   string
	Fault     *fault.Node
}

// NewMessageEntry creates a plain-message entry stamped with the current
// local time at second precision.
func NewMessageEntry(sev Severity, source string, threadID int64, message string) *LogEntry {
	return &LogEntry{
		Timestamp: now(),
		Severity:  sev,
		Source:    source,
		ThreadID:  threadID,
		Message:   message,
	}
}

// NewFaultEntry creates an entry whose payload is a fault tree.
func NewFaultEntry(sev Severity, source string, threadID int64, node *fault.Node) *LogEntry {
	return &LogEntry{
		Timestamp: now(),
		Severity:  sev,
		Source:    source,
		ThreadID:  threadID,
		Fault:     node,
	}
}

func now() time.Time {
	return time.Now().Truncate(time.Second)
}

// Formatter renders an entry as one log fragment, without trailing newline.
type Formatter interface {
	Format(entry *LogEntry) ([]byte, error)
}
