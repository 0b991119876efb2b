//go:build patchdebug

package frame

const DebugChecks = true
