package frame

import "fmt"

// Assertf panics with a formatted message when cond is false and the
// patchdebug build tag is set. Hot loops should guard the call with
// DebugChecks so the arguments are not evaluated in release builds.
func Assertf(cond bool, format string, args ...any) {
	if DebugChecks && !cond {
		panic(fmt.Sprintf("frame: assertion failed: "+format, args...))
	}
}
