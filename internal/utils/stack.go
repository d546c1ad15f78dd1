package utils

import (
	"bytes"
	"runtime"
	"strconv"
	"strings"
)

// ShortFuncName trims the import path from a fully qualified function name
// as reported by runtime.Frame.Function, keeping the package name.
//
//	github.com/acme/app/pkg/store.(*DB).Query  -> store.DB.Query
//	main.main.func1                            -> main.main.func1
func ShortFuncName(full string) string {
	if full == "" {
		return ""
	}
	name := full
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	// Pointer receivers are reported as (*T); the owning type reads better bare.
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")
	return name
}

// PackagePath returns the import path portion of a fully qualified function
// name, e.g. "github.com/acme/app/pkg/store" for
// "github.com/acme/app/pkg/store.(*DB).Query".
func PackagePath(full string) string {
	slash := strings.LastIndex(full, "/")
	if slash < 0 {
		slash = 0
	}
	dot := strings.Index(full[slash:], ".")
	if dot < 0 {
		return full
	}
	return full[:slash+dot]
}

var goroutinePrefix = []byte("goroutine ")

// GoroutineID returns the numeric id of the calling goroutine, or 0 if it
// cannot be determined. Go does not expose thread identity, so the goroutine
// id is the closest stable producer identifier available.
func GoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
