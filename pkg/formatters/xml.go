package formatters

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/wayneeseguin/logspool/internal/buffer"
	"github.com/wayneeseguin/logspool/pkg/fault"
	"github.com/wayneeseguin/logspool/pkg/types"
)

// XMLFormatter renders each entry as a single-line LogEntry element. Files
// written in this mode are sequences of fragments; wrap them in a root
// element to obtain a document.
type XMLFormatter struct{}

// NewXMLFormatter creates a new XML formatter
func NewXMLFormatter() *XMLFormatter {
	return &XMLFormatter{}
}

// Format implements types.Formatter.
func (f *XMLFormatter) Format(entry *types.LogEntry) ([]byte, error) {
	if entry == nil {
		return nil, fmt.Errorf("nil log entry")
	}
	return encodeElement(entryElement(entry))
}

// FaultXML renders a fault tree on its own, as forwarded to out-of-band
// channels.
func FaultXML(node *fault.Node) ([]byte, error) {
	if node == nil {
		return nil, nil
	}
	return encodeElement(faultElement(node))
}

var buffers = buffer.NewBufferPool()

func encodeElement(el *element) ([]byte, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)

	if err := writeElement(buf, el); err != nil {
		return nil, fmt.Errorf("encode %s: %w", el.name, err)
	}
	return buffer.Bytes(buf), nil
}

// writeElement emits el without indentation. xml.EscapeText also escapes
// tab, CR and LF, which keeps every fragment on a single line.
func writeElement(buf *bytes.Buffer, el *element) error {
	buf.WriteByte('<')
	buf.WriteString(el.name)
	for _, a := range el.attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.name)
		buf.WriteString(`="`)
		if err := xml.EscapeText(buf, []byte(a.value)); err != nil {
			return err
		}
		buf.WriteByte('"')
	}
	buf.WriteByte('>')
	if err := xml.EscapeText(buf, []byte(el.text)); err != nil {
		return err
	}
	for _, child := range el.children {
		if err := writeElement(buf, child); err != nil {
			return err
		}
	}
	buf.WriteString("</")
	buf.WriteString(el.name)
	buf.WriteByte('>')
	return nil
}

// XMLLogEntry is the decoded form of one LogEntry fragment.
type XMLLogEntry struct {
	XMLName   xml.Name      `xml:"LogEntry"`
	Date      string        `xml:"Date,attr"`
	Severity  string        `xml:"Severity,attr"`
	Source    string        `xml:"Source,attr"`
	ThreadID  int64         `xml:"ThreadId,attr"`
	Message   *string       `xml:"Message"`
	Exception *XMLException `xml:"Exception"`
}

// XMLException is the decoded form of an Exception element.
type XMLException struct {
	Type       string           `xml:"Type,attr"`
	Source     string           `xml:"Source,attr"`
	Message    string           `xml:"Message"`
	Data       []XMLDataEntry   `xml:"Data>Entry"`
	SQL        *XMLSQLException `xml:"SqlException"`
	COM        *XMLCOMException `xml:"ComException"`
	Aggregate  []XMLException   `xml:"AggregateException>Exception"`
	Inner      *XMLException    `xml:"Exception"`
	StackTrace *string          `xml:"StackTrace"`
}

// XMLDataEntry is one Data/Entry element.
type XMLDataEntry struct {
	Key   string `xml:"Key,attr"`
	Value string `xml:"Value,attr"`
}

// XMLSQLException is the decoded data-access payload.
type XMLSQLException struct {
	ErrorNumber int    `xml:"ErrorNumber,attr"`
	ServerName  string `xml:"ServerName,attr,omitempty"`
	Procedure   string `xml:"Procedure,attr,omitempty"`
}

// XMLCOMException is the decoded interop payload.
type XMLCOMException struct {
	ErrorCode string `xml:"ErrorCode,attr"`
}

// XMLLogEntries is the root element used when reading a whole file back.
type XMLLogEntries struct {
	XMLName xml.Name      `xml:"LogEntries"`
	Entries []XMLLogEntry `xml:"LogEntry"`
}
