package formatters

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/wayneeseguin/logspool/pkg/fault"
	"github.com/wayneeseguin/logspool/pkg/types"
)

var fixedTime = time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local)

func messageEntry(msg string) *types.LogEntry {
	return &types.LogEntry{
		Timestamp: fixedTime,
		Severity:  types.SeverityInfo,
		Source:    "main.worker.run",
		ThreadID:  7,
		Message:   msg,
	}
}

func TestXMLFormatter_Message(t *testing.T) {
	out, err := NewXMLFormatter().Format(messageEntry("hello"))
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := `<LogEntry Date="2024-03-05 14:07:09" Severity="Info" Source="main.worker.run" ThreadId="7"><Message>hello</Message></LogEntry>`
	if string(out) != want {
		t.Errorf("Format() =\n%s\nwant\n%s", out, want)
	}
}

func TestXMLFormatter_Escaping(t *testing.T) {
	out, err := NewXMLFormatter().Format(messageEntry("a < b & \"c\"\nnext line"))
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.ContainsAny(string(out), "\n\r") {
		t.Errorf("fragment must stay on one line: %q", out)
	}

	var decoded XMLLogEntry
	if err := xml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("fragment is not well-formed: %v", err)
	}
	if decoded.Message == nil || *decoded.Message != "a < b & \"c\"\nnext line" {
		t.Errorf("message did not round trip: %v", decoded.Message)
	}
}

func TestXMLFormatter_FaultTree(t *testing.T) {
	leaf := &fault.Node{
		Kind:       fault.KindDataAccess,
		Type:       "*fault.DataAccessError",
		Message:    "invalid column",
		DataAccess: &fault.DataAccessInfo{Code: 207, Operation: "GetUsers"},
		StackTrace: "main.load\n\t/src/main.go:10",
	}
	root := &fault.Node{
		Kind:    fault.KindGeneric,
		Type:    "*fmt.wrapError",
		Origin:  "main.load",
		Message: "load users",
		Data:    map[string]string{"Username": "svc", "Filename": "/tmp/a.log"},
		Cause:   leaf,
	}
	entry := &types.LogEntry{
		Timestamp: fixedTime,
		Severity:  types.SeverityFault,
		Source:    "main.load",
		ThreadID:  3,
		Fault:     root,
	}

	out, err := NewXMLFormatter().Format(entry)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded XMLLogEntry
	if err := xml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if decoded.Severity != "Fault" || decoded.Message != nil {
		t.Fatalf("unexpected entry %+v", decoded)
	}

	ex := decoded.Exception
	if ex == nil || ex.Message != "load users" || ex.Source != "main.load" {
		t.Fatalf("unexpected root exception %+v", ex)
	}
	if len(ex.Data) != 2 || ex.Data[0].Key != "Filename" || ex.Data[1].Value != "svc" {
		t.Errorf("data should be sorted by key: %+v", ex.Data)
	}
	if ex.StackTrace != nil {
		t.Error("non-leaf exception must not carry a stack trace")
	}

	inner := ex.Inner
	if inner == nil || inner.SQL == nil {
		t.Fatalf("expected nested SqlException, got %+v", inner)
	}
	if inner.SQL.ErrorNumber != 207 || inner.SQL.ServerName != "" || inner.SQL.Procedure != "GetUsers" {
		t.Errorf("unexpected SqlException %+v", inner.SQL)
	}
	if strings.Contains(string(out), "ServerName") {
		t.Error("empty server name should be omitted")
	}
	if inner.StackTrace == nil || !strings.Contains(*inner.StackTrace, "main.load") {
		t.Errorf("leaf should carry the stack trace, got %v", inner.StackTrace)
	}
}

func TestXMLFormatter_Aggregate(t *testing.T) {
	node := &fault.Node{
		Kind:    fault.KindAggregate,
		Type:    "*errors.joinError",
		Message: "2 errors occurred",
		Children: []*fault.Node{
			{Kind: fault.KindInterop, Type: "syscall.Errno", Message: "no such file", Interop: &fault.InteropInfo{Code: 2}},
			{Kind: fault.KindGeneric, Type: "*errors.errorString", Message: "second"},
		},
	}

	out, err := FaultXML(node)
	if err != nil {
		t.Fatalf("FaultXML() error = %v", err)
	}

	var ex XMLException
	if err := xml.Unmarshal(out, &ex); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if len(ex.Aggregate) != 2 {
		t.Fatalf("expected 2 aggregated exceptions, got %d", len(ex.Aggregate))
	}
	if ex.Inner != nil || ex.StackTrace != nil {
		t.Error("aggregate should continue only through its children")
	}
	if ex.Aggregate[0].COM == nil || ex.Aggregate[0].COM.ErrorCode != "0x00000002" {
		t.Errorf("unexpected ComException %+v", ex.Aggregate[0].COM)
	}
	if ex.Aggregate[1].StackTrace == nil {
		t.Error("child leaf should have a StackTrace element")
	}
}

func TestFaultXMLNil(t *testing.T) {
	out, err := FaultXML(nil)
	if err != nil || out != nil {
		t.Errorf("FaultXML(nil) = %q, %v", out, err)
	}
}

func TestXMLLogEntries(t *testing.T) {
	f := NewXMLFormatter()
	var doc strings.Builder
	doc.WriteString(xml.Header + "<LogEntries>")
	for _, msg := range []string{"one", "two"} {
		out, err := f.Format(messageEntry(msg))
		if err != nil {
			t.Fatal(err)
		}
		doc.Write(out)
		doc.WriteString("\n")
	}
	doc.WriteString("</LogEntries>")

	var entries XMLLogEntries
	if err := xml.Unmarshal([]byte(doc.String()), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries.Entries) != 2 || *entries.Entries[1].Message != "two" {
		t.Errorf("unexpected entries %+v", entries.Entries)
	}
	if entries.Entries[0].ThreadID != 7 {
		t.Errorf("ThreadID = %d", entries.Entries[0].ThreadID)
	}
}
