//go:build unix

package backends

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// IsDiskFull reports whether err was caused by the filesystem running out of
// space or quota.
func IsDiskFull(err error) bool {
	return errors.Is(err, unix.ENOSPC) || errors.Is(err, unix.EDQUOT)
}
