//go:build !patchdebug

package frame

// DebugChecks enables contract assertions on hot paths. Build with
// -tags patchdebug to turn them on.
const DebugChecks = false
