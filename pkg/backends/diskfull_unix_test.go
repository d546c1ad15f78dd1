//go:build unix

package backends

import (
	"fmt"
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func TestIsDiskFullErrno(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"enospc", unix.ENOSPC, true},
		{"edquot", unix.EDQUOT, true},
		{"wrapped path error", fmt.Errorf("write: %w", &os.PathError{Op: "write", Path: "/x", Err: unix.ENOSPC}), true},
		{"eacces", unix.EACCES, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDiskFull(tt.err); got != tt.want {
				t.Errorf("IsDiskFull(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestFailMarksDiskFull(t *testing.T) {
	w := NewFileWriter(0)
	err := w.fail("/var/log/app.log", &os.PathError{Op: "write", Path: "/var/log/app.log", Err: unix.ENOSPC})

	data, ok := err.(interface{ FaultData() map[string]string })
	if !ok {
		t.Fatalf("expected fault data carrier, got %T", err)
	}
	if data.FaultData()[DataDiskFull] != "true" {
		t.Errorf("DiskFull not set: %v", data.FaultData())
	}
}
