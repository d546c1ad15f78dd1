package backends_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	testhelpers "github.com/wayneeseguin/logspool/internal/testing"
	"github.com/wayneeseguin/logspool/pkg/backends"
	"github.com/wayneeseguin/logspool/pkg/fault"
)

func TestFileWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_2024_03_05.log")
	w := backends.NewFileWriter(0)

	if w.LockTimeout() != backends.DefaultLockTimeout {
		t.Errorf("LockTimeout() = %s, want %s", w.LockTimeout(), backends.DefaultLockTimeout)
	}

	for _, line := range []string{"first", "second"} {
		if err := w.Write(path, []byte(line)); err != nil {
			t.Fatalf("Write(%q) error = %v", line, err)
		}
	}

	lines := testhelpers.ReadLines(t, path)
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Errorf("unexpected file content %v", lines)
	}

	stats := w.Stats()
	if stats.WriteCount != 2 {
		t.Errorf("WriteCount = %d, want 2", stats.WriteCount)
	}
	if stats.BytesWritten != uint64(len("first\nsecond\n")) {
		t.Errorf("BytesWritten = %d", stats.BytesWritten)
	}
	if stats.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d", stats.ErrorCount)
	}
}

func TestFileWriter_PathChangesBetweenWrites(t *testing.T) {
	dir := t.TempDir()
	w := backends.NewFileWriter(time.Second)

	first := filepath.Join(dir, "a.log")
	second := filepath.Join(dir, "b.log")
	if err := w.Write(first, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(second, []byte("two")); err != nil {
		t.Fatal(err)
	}

	if got := testhelpers.ReadLines(t, first); len(got) != 1 || got[0] != "one" {
		t.Errorf("first file = %v", got)
	}
	if got := testhelpers.ReadLines(t, second); len(got) != 1 || got[0] != "two" {
		t.Errorf("second file = %v", got)
	}
}

func TestFileWriter_ConcurrentWritesDoNotInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.log")
	w := backends.NewFileWriter(time.Second)

	const goroutines, perGoroutine = 8, 25
	payload := strings.Repeat("x", 512)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				if err := w.Write(path, []byte(fmt.Sprintf("%d-%d-%s", g, i, payload))); err != nil {
					t.Errorf("Write() error = %v", err)
				}
			}
		}(g)
	}
	wg.Wait()

	lines := testhelpers.ReadLines(t, path)
	if len(lines) != goroutines*perGoroutine {
		t.Fatalf("expected %d lines, got %d", goroutines*perGoroutine, len(lines))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, payload) {
			t.Fatalf("interleaved line %q", line[:min(len(line), 40)])
		}
	}
}

func TestFileWriter_Busy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "busy.log")

	// A second lock handle on the same file conflicts with the writer's own.
	holder := flock.New(path)
	if err := holder.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	defer holder.Unlock()

	w := backends.NewFileWriter(150 * time.Millisecond)
	start := time.Now()
	err := w.Write(path, []byte("never written"))
	elapsed := time.Since(start)

	if !errors.Is(err, backends.ErrFileBusy) {
		t.Fatalf("expected ErrFileBusy, got %v", err)
	}
	if elapsed < 150*time.Millisecond {
		t.Errorf("returned after %s, before the lock timeout", elapsed)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("busy error should name the file: %v", err)
	}

	if lines := testhelpers.ReadLines(t, path); len(lines) != 0 {
		t.Errorf("nothing should be written while busy, got %v", lines)
	}
	if stats := w.Stats(); stats.BusyCount != 1 || stats.ErrorCount != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}

	// Once released the next write goes through.
	holder.Unlock()
	if err := w.Write(path, []byte("after release")); err != nil {
		t.Fatalf("Write() after release error = %v", err)
	}
}

func TestFileWriter_BusyDefaultTimeout(t *testing.T) {
	testhelpers.SkipIfUnit(t, "waits for the full default lock timeout")

	path := filepath.Join(t.TempDir(), "busy.log")
	holder := flock.New(path)
	if err := holder.Lock(); err != nil {
		t.Fatal(err)
	}
	defer holder.Unlock()

	start := time.Now()
	err := backends.NewFileWriter(0).Write(path, []byte("x"))
	if !errors.Is(err, backends.ErrFileBusy) {
		t.Fatalf("expected ErrFileBusy, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < backends.DefaultLockTimeout || elapsed > backends.DefaultLockTimeout+2*time.Second {
		t.Errorf("busy after %s, want about %s", elapsed, backends.DefaultLockTimeout)
	}
}

func TestFileWriter_FailureCarriesFaultData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "x.log")
	w := backends.NewFileWriter(time.Second)

	err := w.Write(path, []byte("x"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
	if errors.Is(err, backends.ErrFileBusy) {
		t.Fatal("a missing directory is not a busy file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist cause, got %v", err)
	}

	node := fault.FromError(err)
	if node.Data[backends.DataFilename] != path {
		t.Errorf("Filename data = %q, want %q", node.Data[backends.DataFilename], path)
	}
	if _, ok := node.Data[backends.DataDiskFull]; ok {
		t.Error("missing directory must not be flagged as disk full")
	}
	if node.Find(fault.KindInterop) == nil {
		t.Error("errno cause should appear as an interop node")
	}
	if w.Stats().ErrorCount != 1 {
		t.Errorf("ErrorCount = %d", w.Stats().ErrorCount)
	}
}

func TestIsDiskFull(t *testing.T) {
	if backends.IsDiskFull(nil) {
		t.Error("nil is not disk full")
	}
	if backends.IsDiskFull(errors.New("permission denied")) {
		t.Error("unrelated error reported as disk full")
	}
}
