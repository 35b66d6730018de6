//go:build linux && !mips && !mipsle && !mips64 && !mips64le

package signals

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// kernelSigaction is struct sigaction as rt_sigaction(2) takes it. Only the
// zero value is ever passed, so the missing sa_restorer on riscv64 and
// loong64 is harmless. mips has a 128-bit sigset and is built without this.
type kernelSigaction struct {
	handler  uintptr
	flags    uintptr
	restorer uintptr
	mask     [2]uint32
}

// setDefaultAction installs SIG_DFL for sig behind the runtime's back. The
// runtime would otherwise keep its own handler, which turns QUIT and ABRT
// into a traceback and exit status 2.
func setDefaultAction(sig syscall.Signal) error {
	var sa kernelSigaction // zero handler is SIG_DFL
	_, _, errno := unix.RawSyscall6(unix.SYS_RT_SIGACTION,
		uintptr(sig), uintptr(unsafe.Pointer(&sa)), 0, unsafe.Sizeof(sa.mask), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
