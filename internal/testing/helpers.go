package testing

import (
	"bufio"
	"os"
	"testing"
	"time"
)

// Environment variables selecting the test mode.
const (
	EnvUnitOnly       = "LOGSPOOL_UNIT_TESTS_ONLY"
	EnvRunIntegration = "LOGSPOOL_RUN_INTEGRATION_TESTS"
)

// Unit returns true if running in unit test mode.
// Unit tests should be fast and must not depend on wall-clock waits of
// several seconds or on a local syslog daemon.
func Unit() bool {
	// Explicit unit-only wins
	if os.Getenv(EnvUnitOnly) == "true" {
		return true
	}

	switch os.Getenv(EnvRunIntegration) {
	case "true":
		return false
	case "false":
		return true
	}

	// Default to unit mode if not explicitly running integration tests
	return true
}

// Integration returns true if running in integration test mode.
func Integration() bool {
	return !Unit()
}

// SkipIfUnit skips the test if running in unit test mode.
func SkipIfUnit(t *testing.T, message ...string) {
	t.Helper()
	if Unit() {
		msg := "Skipping integration test in unit mode"
		if len(message) > 0 {
			msg = message[0]
		}
		t.Skip(msg)
	}
}

// SkipIfIntegration skips the test if running in integration test mode.
func SkipIfIntegration(t *testing.T, message ...string) {
	t.Helper()
	if Integration() {
		msg := "Skipping unit-only test in integration mode"
		if len(message) > 0 {
			msg = message[0]
		}
		t.Skip(msg)
	}
}

// Eventually polls cond every 10ms until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition not met within %s: %s", timeout, msg)
	}
}

// ReadLines returns the lines of the file at path. A missing file yields no
// lines.
func ReadLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return lines
}
