package backends_test

import (
	"bytes"
	"errors"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wayneeseguin/logspool/pkg/backends"
)

type recordingSink struct {
	msgs []string
	err  error
}

func (r *recordingSink) Report(msg string) error {
	r.msgs = append(r.msgs, msg)
	return r.err
}

func TestStderrSink(t *testing.T) {
	var buf bytes.Buffer
	sink := &backends.StderrSink{W: &buf}

	if err := sink.Report("<Exception/>"); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "logspool: <Exception/>\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestDedupSink(t *testing.T) {
	rec := &recordingSink{}
	sink := backends.NewDedupSink(rec)

	for _, msg := range []string{"a", "a", "b", "b", "b", "a"} {
		if err := sink.Report(msg); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{"a", "b", "a"}
	if strings.Join(rec.msgs, ",") != strings.Join(want, ",") {
		t.Errorf("forwarded %v, want %v", rec.msgs, want)
	}
	if sink.Unwrap() != rec {
		t.Error("Unwrap() should return the wrapped sink")
	}
}

func TestDedupSinkPropagatesError(t *testing.T) {
	failing := errors.New("sink down")
	sink := backends.NewDedupSink(&recordingSink{err: failing})
	if err := sink.Report("x"); !errors.Is(err, failing) {
		t.Errorf("expected sink error, got %v", err)
	}
}

func TestNewDedupSinkNil(t *testing.T) {
	if backends.NewDedupSink(nil) != nil {
		t.Error("wrapping nil should yield nil")
	}
}

func TestSyslogSink(t *testing.T) {
	addr := filepath.Join(t.TempDir(), "log.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: addr, Net: "unixgram"})
	if err != nil {
		t.Skipf("unixgram sockets unavailable: %v", err)
	}
	defer conn.Close()

	sink, err := backends.NewSyslogSink("", addr, "myapp")
	if err != nil {
		t.Fatalf("NewSyslogSink() error = %v", err)
	}
	defer sink.Close()

	if !strings.HasPrefix(sink.Address(), "syslog://unixgram/") {
		t.Errorf("Address() = %q", sink.Address())
	}

	if err := sink.Report("  write failed \n"); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	buf := make([]byte, 1024)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read datagram: %v", err)
	}
	if got := string(buf[:n]); got != "<11>myapp: write failed" {
		t.Errorf("unexpected record %q", got)
	}

	if err := sink.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := sink.Report("after close"); err == nil {
		t.Error("Report() after Close should fail")
	}
}

func TestSyslogSinkTCP(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("tcp unavailable: %v", err)
	}
	defer listener.Close()

	received := make(chan string, 1)
	go func() {
		c, err := listener.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		buf := make([]byte, 256)
		n, _ := c.Read(buf)
		received <- string(buf[:n])
	}()

	sink, err := backends.NewSyslogSink("tcp", listener.Addr().String(), "")
	if err != nil {
		t.Fatalf("NewSyslogSink() error = %v", err)
	}
	defer sink.Close()

	if err := sink.Report("fault"); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-received:
		if got != "<11>logspool: fault\n" {
			t.Errorf("unexpected record %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no record received")
	}
}
