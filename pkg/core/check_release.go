//go:build !debug

package core

// DebugChecks enables DCheck assertions.
const DebugChecks = false
