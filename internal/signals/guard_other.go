//go:build !unix

package signals

import "errors"

// ErrUnsupported is returned by Install on platforms without POSIX signals.
var ErrUnsupported = errors.New("signal guard requires a unix platform")

// Install is a no-op on platforms without POSIX signals.
func Install() error {
	return ErrUnsupported
}
