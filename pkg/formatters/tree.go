package formatters

import (
	"strconv"

	"github.com/wayneeseguin/logspool/pkg/fault"
	"github.com/wayneeseguin/logspool/pkg/types"
)

// DateLayout is the layout of the Date attribute.
const DateLayout = "2006-01-02 15:04:05"

// Element names shared by the XML and text renderings.
const (
	ElemLogEntry   = "LogEntry"
	ElemMessage    = "Message"
	ElemException  = "Exception"
	ElemData       = "Data"
	ElemDataEntry  = "Entry"
	ElemSQL        = "SqlException"
	ElemCOM        = "ComException"
	ElemAggregate  = "AggregateException"
	ElemStackTrace = "StackTrace"
)

type attr struct {
	name  string
	value string
}

// element is the intermediate tree both renderings walk. An element either
// has children or text, never both.
type element struct {
	name     string
	attrs    []attr
	text     string
	children []*element
}

func (e *element) attr(name, value string) *element {
	e.attrs = append(e.attrs, attr{name: name, value: value})
	return e
}

func (e *element) add(child *element) *element {
	e.children = append(e.children, child)
	return e
}

func textElement(name, text string) *element {
	return &element{name: name, text: text}
}

func entryElement(entry *types.LogEntry) *element {
	root := &element{name: ElemLogEntry}
	root.attr("Date", entry.Timestamp.Format(DateLayout)).
		attr("Severity", entry.Severity.String()).
		attr("Source", entry.Source).
		attr("ThreadId", strconv.FormatInt(entry.ThreadID, 10))

	if entry.Fault != nil {
		root.add(faultElement(entry.Fault))
	} else {
		root.add(textElement(ElemMessage, entry.Message))
	}
	return root
}

func faultElement(node *fault.Node) *element {
	el := &element{name: ElemException}
	el.attr("Type", node.Type)
	if node.Origin != "" {
		el.attr("Source", node.Origin)
	}
	el.add(textElement(ElemMessage, node.Message))

	if len(node.Data) > 0 {
		data := &element{name: ElemData}
		for _, k := range node.SortedDataKeys() {
			data.add((&element{name: ElemDataEntry}).attr("Key", k).attr("Value", node.Data[k]))
		}
		el.add(data)
	}

	switch node.Kind {
	case fault.KindDataAccess:
		sql := &element{name: ElemSQL}
		if node.DataAccess != nil {
			sql.attr("ErrorNumber", strconv.Itoa(node.DataAccess.Code))
			if node.DataAccess.Server != "" {
				sql.attr("ServerName", node.DataAccess.Server)
			}
			if node.DataAccess.Operation != "" {
				sql.attr("Procedure", node.DataAccess.Operation)
			}
		}
		el.add(sql)
	case fault.KindInterop:
		com := &element{name: ElemCOM}
		if node.Interop != nil {
			com.attr("ErrorCode", node.Interop.HexCode())
		}
		el.add(com)
	case fault.KindAggregate:
		agg := &element{name: ElemAggregate}
		for _, child := range node.Children {
			agg.add(faultElement(child))
		}
		el.add(agg)
		return el
	}

	if node.Cause != nil {
		el.add(faultElement(node.Cause))
	} else {
		el.add(textElement(ElemStackTrace, node.StackTrace))
	}
	return el
}
