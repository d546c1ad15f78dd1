package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(), append([]string{"logspool"}, args...))
	return out.String(), err
}

func TestCLI_WriteAndRead(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "missing.toml")

	if _, err := run(t, "--config", config, "--dir", dir, "write", "hello", "world"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := run(t, "--config", config, "--dir", dir, "write", "--severity", "error", "--sync", "boom"); err != nil {
		t.Fatalf("write --sync: %v", err)
	}

	out, err := run(t, "--config", config, "--dir", dir, "cat")
	if err != nil {
		t.Fatalf("cat: %v", err)
	}
	if !strings.Contains(out, "<Message>hello world</Message>") || !strings.Contains(out, `Severity="Error"`) {
		t.Errorf("cat output = %q", out)
	}
	if !strings.Contains(out, `Source="logspool.cli"`) {
		t.Errorf("entries should name the CLI as source: %q", out)
	}

	out, err = run(t, "--config", config, "--dir", dir, "xml")
	if err != nil {
		t.Fatalf("xml: %v", err)
	}
	if !strings.HasPrefix(out, "<?xml") || !strings.Contains(out, "<LogEntries>") {
		t.Errorf("xml output = %q", out)
	}
}

func TestCLI_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")
	config := filepath.Join(dir, "logspool.toml")
	content := "directory = \"" + filepath.ToSlash(logDir) + "\"\nprefix = \"cli_\"\nmode = \"text\"\n"
	if err := os.WriteFile(config, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--config", config, "path")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	path := strings.TrimSpace(out)
	if filepath.Dir(path) != logDir || !strings.HasPrefix(filepath.Base(path), "cli_") {
		t.Errorf("path = %q", path)
	}

	if _, err := run(t, "--config", config, "write", "--severity", "warning", "plain"); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "--config", config, "cat")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Severity = Warning") || !strings.Contains(out, "Message = plain") {
		t.Errorf("cat output = %q", out)
	}
}

func TestCLI_WriteExplicitStart(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "logspool.toml")
	content := "directory = \"" + filepath.ToSlash(dir) + "\"\nstart = \"explicit\"\nmode = \"text\"\n"
	if err := os.WriteFile(config, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "--config", config, "write", "hello"); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := run(t, "--config", config, "cat")
	if err != nil {
		t.Fatalf("cat: %v", err)
	}
	if !strings.Contains(out, "Message = hello") {
		t.Errorf("cat output = %q", out)
	}
}

func TestCLI_Verify(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "--config", filepath.Join(dir, "none.toml"), "--dir", dir, "--text", "verify")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.HasPrefix(out, "ok ") {
		t.Errorf("verify output = %q", out)
	}

	path := strings.TrimSpace(strings.TrimPrefix(out, "ok "))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Message = Test entry to see if logging works.") {
		t.Errorf("log content = %q", data)
	}
}

func TestCLI_Errors(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "none.toml")

	tests := []struct {
		name string
		args []string
	}{
		{"missing message", []string{"write"}},
		{"unknown severity", []string{"write", "--severity", "chatty", "x"}},
		{"no log file yet", []string{"cat"}},
		{"bad date", []string{"cat", "--date", "yesterday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", config, "--dir", dir}, tt.args...)
			if _, err := run(t, args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
