package logspool

import (
	"reflect"
	"runtime"

	"github.com/wayneeseguin/logspool/internal/utils"
)

// CallerResolver names the code that emitted an entry. skip counts frames
// above the first one outside this package.
type CallerResolver interface {
	ResolveCaller(skip int) string
}

// CallerFunc adapts a function to CallerResolver.
type CallerFunc func(skip int) string

// ResolveCaller implements CallerResolver.
func (f CallerFunc) ResolveCaller(skip int) string { return f(skip) }

// UnknownCaller is the Source of entries whose caller cannot be resolved.
const UnknownCaller = "unknown"

// StackResolver walks the goroutine stack and returns the first function
// outside this package as "pkg.Type.Method" or "pkg.func".
type StackResolver struct{}

var selfPackage = reflect.TypeOf(StackResolver{}).PkgPath()

const maxCallerFrames = 32

// ResolveCaller implements CallerResolver.
func (StackResolver) ResolveCaller(skip int) string {
	pcs := make([]uintptr, maxCallerFrames)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if frame.Function != "" && utils.PackagePath(frame.Function) != selfPackage {
			if skip <= 0 {
				return utils.ShortFuncName(frame.Function)
			}
			skip--
		}
		if !more {
			break
		}
	}
	return UnknownCaller
}
