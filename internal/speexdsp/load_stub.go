//go:build !(darwin || freebsd || linux)

// ABOUTME: Stub loader for platforms without dlopen support
// ABOUTME: Reports the backend unavailable so the linear fallback is used
package speexdsp

import "errors"

func load() {
	loadErr = errors.New("dynamic loading not supported on this platform")
}
