//go:build !unix

package backends

import "strings"

// IsDiskFull reports whether err was caused by the filesystem running out of
// space.
func IsDiskFull(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no space left") ||
		strings.Contains(msg, "disk full") ||
		strings.Contains(msg, "not enough space")
}
