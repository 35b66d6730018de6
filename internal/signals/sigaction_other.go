//go:build unix && !(linux && !mips && !mipsle && !mips64 && !mips64le)

package signals

import (
	"runtime/debug"
	"syscall"

	"golang.org/x/sys/unix"
)

// setDefaultAction leaves sig with the runtime's default. For QUIT and ABRT
// that default is a traceback and exit status 2; the "crash" traceback level
// turns it into an abort with a core dump, reported as ABRT.
func setDefaultAction(sig syscall.Signal) error {
	switch sig {
	case unix.SIGQUIT, unix.SIGABRT:
		debug.SetTraceback("crash")
	}
	return nil
}
