package backends

import (
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
)

// Syslog priority used for reported faults: facility user, severity err.
const SyslogPriority = 1<<3 | 3

// SyslogSink reports faults to the local syslog daemon.
type SyslogSink struct {
	network string
	address string
	conn    net.Conn
	tag     string
	mu      sync.Mutex
}

// NewSyslogSink connects to syslog. With an empty address the common local
// socket paths are tried in turn.
func NewSyslogSink(network, address, tag string) (*SyslogSink, error) {
	if tag == "" {
		tag = "logspool"
	}

	if address == "" {
		for _, path := range []string{"/dev/log", "/var/run/syslog", "/var/run/log"} {
			if _, err := os.Stat(path); err == nil {
				address = path
				break
			}
		}
		if address == "" {
			return nil, fmt.Errorf("no local syslog socket found")
		}
	}

	conn, network, err := dialSyslog(network, address)
	if err != nil {
		return nil, fmt.Errorf("dial syslog: %w", err)
	}

	return &SyslogSink{
		network: network,
		address: address,
		conn:    conn,
		tag:     tag,
	}, nil
}

// dialSyslog dials address. Local sockets are usually datagram sockets, so
// without an explicit network unixgram is tried before unix.
func dialSyslog(network, address string) (net.Conn, string, error) {
	if network != "" {
		conn, err := net.Dial(network, address)
		return conn, network, err
	}
	var lastErr error
	for _, nw := range []string{"unixgram", "unix"} {
		conn, err := net.Dial(nw, address)
		if err == nil {
			return conn, nw, nil
		}
		lastErr = err
	}
	return nil, "", lastErr
}

// Report sends msg as one syslog record.
func (s *SyslogSink) Report(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("syslog sink closed")
	}

	// Format syslog message: <priority>tag: message
	record := fmt.Sprintf("<%d>%s: %s", SyslogPriority, s.tag, strings.TrimSpace(msg))
	if s.network == "tcp" || s.network == "unix" {
		record += "\n"
	}
	_, err := s.conn.Write([]byte(record))
	return err
}

// Close closes the syslog connection
func (s *SyslogSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return fmt.Errorf("close conn: %w", err)
	}
	return nil
}

// Address returns the network and address the sink is connected to.
func (s *SyslogSink) Address() string {
	return fmt.Sprintf("syslog://%s/%s", s.network, s.address)
}
