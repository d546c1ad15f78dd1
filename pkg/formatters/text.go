package formatters

import (
	"fmt"
	"strings"

	"github.com/wayneeseguin/logspool/pkg/types"
)

// DefaultSeparator joins the fields of a text-mode line.
const DefaultSeparator = " | "

// TextFormatter flattens an entry into one line of "name = value" fields.
type TextFormatter struct {
	Separator string
}

// NewTextFormatter creates a new text formatter. An empty separator selects
// DefaultSeparator.
func NewTextFormatter(separator string) *TextFormatter {
	if separator == "" {
		separator = DefaultSeparator
	}
	return &TextFormatter{Separator: separator}
}

// Format implements types.Formatter.
func (f *TextFormatter) Format(entry *types.LogEntry) ([]byte, error) {
	if entry == nil {
		return nil, fmt.Errorf("nil log entry")
	}

	var fields []string
	flatten(entryElement(entry), &fields)

	sep := f.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	return []byte(strings.Join(fields, sep)), nil
}

// flatten walks el depth first. Attributes come before children; a leaf
// without attributes contributes its text, and containers without
// attributes contribute nothing themselves.
func flatten(el *element, fields *[]string) {
	for _, a := range el.attrs {
		*fields = append(*fields, field(a.name, a.value))
	}
	if len(el.children) == 0 && len(el.attrs) == 0 {
		*fields = append(*fields, field(el.name, el.text))
		return
	}
	for _, child := range el.children {
		flatten(child, fields)
	}
}

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func field(name, value string) string {
	return name + " = " + newlines.Replace(value)
}
