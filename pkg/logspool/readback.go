package logspool

import (
	"bytes"
	"encoding/xml"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/wayneeseguin/logspool/pkg/formatters"
)

// XMLDocument is a log file read back as a well-formed XML document.
type XMLDocument struct {
	// Raw holds the XML declaration, a LogEntries root and the file contents.
	Raw     []byte
	Entries []formatters.XMLLogEntry
}

// FileName returns the path of the file entries are currently written to.
func (l *Logger) FileName() string {
	return l.settings().cfg.ResolvePath(time.Now())
}

// FileExists reports whether the log file for the date of t exists.
func (l *Logger) FileExists(t time.Time) bool {
	_, err := os.Stat(l.settings().cfg.ResolvePath(t))
	return err == nil
}

// ReadText flushes pending entries and returns the contents of the log file
// for the date of t.
func (l *Logger) ReadText(t time.Time) (string, error) {
	data, err := l.readFile(t)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadXML flushes pending entries and returns the log file for the date of t
// wrapped in a LogEntries root element. It fails when the result is not
// well-formed, for instance when the file was written in text mode.
func (l *Logger) ReadXML(t time.Time) (*XMLDocument, error) {
	data, err := l.readFile(t)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + 64)
	buf.WriteString(xml.Header)
	buf.WriteString("<LogEntries>\n")
	buf.Write(data)
	buf.WriteString("</LogEntries>\n")

	var decoded formatters.XMLLogEntries
	if err := xml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		path := l.settings().cfg.ResolvePath(t)
		return nil, NewLogError(ErrCodeRead, "read_xml", path, errors.Wrap(err, "log file is not well-formed XML"))
	}

	return &XMLDocument{Raw: buf.Bytes(), Entries: decoded.Entries}, nil
}

func (l *Logger) readFile(t time.Time) ([]byte, error) {
	l.Flush()

	path := l.settings().cfg.ResolvePath(t)
	data, err := os.ReadFile(path) // #nosec G304 - path is built from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewLogError(ErrCodeRead, "read", path, ErrNoLogFile)
		}
		return nil, NewLogError(ErrCodeRead, "read", path, errors.Wrap(err, "read log file"))
	}
	return data, nil
}
