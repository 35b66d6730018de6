//go:build unix

/*
PURPOSE:
  Captures diagnostics when the launcher receives a fatal signal, then lets
  the signal take its normal effect.

REQUIREMENTS:
  User-specified:
  - Ignore SIGPIPE.
  - On HUP, INT, QUIT, ABRT, TERM: tell stderr, append a block to the first
    writable log location, run the postmortem helper, restore the default
    disposition and re-send the signal to ourselves.

  Implementation-discovered:
  - Go delivers signals through os/signal channels; the runtime's handler is
    the async-signal-safe part and all real work runs on one worker
    goroutine, so the handler body never preempts the main flow.
  - SEGV, ILL and FPE belong to the runtime and are never touched.
  - signal.Reset hands a signal back to the runtime, whose own default for
    QUIT and ABRT is a goroutine dump and exit status 2. Before re-raising,
    the kernel disposition is set to SIG_DFL directly (sigaction_linux.go) so
    the process dies by the very signal it got, core dump included.
  - HUP and INT that were already ignored at startup (nohup) stay ignored and
    are never intercepted.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (once, at startup)
  - Uses: internal/output.Logger, golang.org/x/sys/unix

ERROR HANDLING:
  - Log and helper failures are swallowed; they must never stop the signal.

IMPLEMENTATION RULES:
  - Keep the order: disable, stderr, log file, helper, restore, re-raise.
  - Log locations and helper path are fixed, not configurable.

USAGE:
  if err := signals.Install(); err != nil { ... }

SELF-HEALING INSTRUCTIONS:
  - If the process no longer dies on TERM, check that restore() runs before
    raise() and that nothing else calls signal.Notify for the same signal.

RELATED FILES:
  - internal/signals/logfile.go

MAINTENANCE:
  - Update Handled when the set of intercepted signals changes.
*/

package signals

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/daryltucker/y2start/internal/output"
)

const (
	// DefaultHelper collects extra data after a fatal signal.
	DefaultHelper = "/usr/lib/YaST2/bin/signal-postmortem"
)

// DefaultLogLocations are tried in order; the second is relative to the
// working directory.
var DefaultLogLocations = []string{"/var/log/YaST2/signal", "y2signal.log"}

// Handled lists the signals that trigger the diagnostic sequence.
var Handled = []syscall.Signal{unix.SIGHUP, unix.SIGINT, unix.SIGQUIT, unix.SIGABRT, unix.SIGTERM}

// ErrAlreadyInstalled is returned by a second Install on the same Guard.
var ErrAlreadyInstalled = errors.New("signal guard already installed")

// Guard owns the process signal dispositions for the handled signals.
type Guard struct {
	LogLocations []string
	Helper       string
	Stderr       io.Writer
	Logger       *slog.Logger

	now       func() time.Time
	stack     func() []byte
	runHelper func(path string) error
	restore   func(sig syscall.Signal) error
	raise     func(sig syscall.Signal) error

	mu   sync.Mutex
	ch   chan os.Signal
	done chan struct{}

	firedMu sync.Mutex
	fired   map[syscall.Signal]bool
}

// New returns a Guard using the default locations and helper.
func New() *Guard {
	return &Guard{
		LogLocations: append([]string(nil), DefaultLogLocations...),
		Helper:       DefaultHelper,
		now:          time.Now,
		stack:        allStacks,
		runHelper:    runHelper,
		restore:      restoreDefault,
		raise:        raiseSelf,
	}
}

var std = New()

// Install installs the process-wide guard. Call it once, early in main.
func Install() error {
	return std.Install()
}

// Install ignores SIGPIPE and starts intercepting the Handled signals.
func (g *Guard) Install() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ch != nil {
		return ErrAlreadyInstalled
	}

	signal.Ignore(unix.SIGPIPE)

	var sigs []os.Signal
	for _, s := range Handled {
		// inherited ignores (nohup) are left alone
		if signal.Ignored(s) {
			g.logger().Debug("Signal ignored at startup, not intercepting", "signal", Name(s))
			continue
		}
		sigs = append(sigs, s)
	}
	g.ch = make(chan os.Signal, len(Handled))
	g.done = make(chan struct{})
	// Notify with no signals would mean all of them
	if len(sigs) > 0 {
		signal.Notify(g.ch, sigs...)
	}
	go g.loop(g.ch, g.done)

	g.logger().Debug("Signal guard installed", "signals", len(sigs), "locations", g.LogLocations)
	return nil
}

// Stop stops intercepting signals. It does not undo the SIGPIPE ignore.
func (g *Guard) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ch == nil {
		return
	}
	signal.Stop(g.ch)
	close(g.ch)
	<-g.done
	g.ch = nil
}

func (g *Guard) loop(ch <-chan os.Signal, done chan<- struct{}) {
	defer close(done)
	for s := range ch {
		sig, ok := s.(syscall.Signal)
		if !ok || !g.claim(sig) {
			continue
		}
		g.handle(sig)
	}
}

// claim marks sig as being handled; later deliveries of it are dropped.
func (g *Guard) claim(sig syscall.Signal) bool {
	g.firedMu.Lock()
	defer g.firedMu.Unlock()
	if g.fired == nil {
		g.fired = make(map[syscall.Signal]bool)
	}
	if g.fired[sig] {
		return false
	}
	g.fired[sig] = true
	return true
}

func (g *Guard) handle(sig syscall.Signal) {
	name := Name(sig)
	log := g.logger()

	fmt.Fprintf(g.stderr(), "YaST got signal %s.\n", name)

	now, stack, helper, restore, raise := g.hooks()

	block := formatBlock(now(), name, stack())
	if path, err := appendFirst(g.LogLocations, block); err != nil {
		log.Debug("No writable signal log", "signal", name, "error", err)
	} else {
		log.Debug("Signal logged", "signal", name, "path", path)
	}

	if g.Helper != "" {
		if err := helper(g.Helper); err != nil {
			log.Debug("Postmortem helper failed", "helper", g.Helper, "error", err)
		}
	}

	if err := restore(sig); err != nil {
		log.Error("Failed to restore default disposition", "signal", name, "error", err)
	}
	if err := raise(sig); err != nil {
		log.Error("Failed to re-raise signal", "signal", name, "error", err)
	}
}

// hooks returns the handler's collaborators, falling back to the real ones
// for a zero-value Guard.
func (g *Guard) hooks() (func() time.Time, func() []byte, func(string) error, func(syscall.Signal) error, func(syscall.Signal) error) {
	now, stack, helper, restore, raise := g.now, g.stack, g.runHelper, g.restore, g.raise
	if now == nil {
		now = time.Now
	}
	if stack == nil {
		stack = allStacks
	}
	if helper == nil {
		helper = runHelper
	}
	if restore == nil {
		restore = restoreDefault
	}
	if raise == nil {
		raise = raiseSelf
	}
	return now, stack, helper, restore, raise
}

func (g *Guard) stderr() io.Writer {
	if g.Stderr != nil {
		return g.Stderr
	}
	return os.Stderr
}

func (g *Guard) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return output.Logger
}

// Name returns the short signal name, e.g. "TERM".
func Name(sig syscall.Signal) string {
	if n := unix.SignalName(sig); n != "" {
		return strings.TrimPrefix(n, "SIG")
	}
	return sig.String()
}

func allStacks() []byte {
	buf := make([]byte, 64*1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return buf[:n]
		}
		if len(buf) >= 16<<20 {
			return buf
		}
		buf = make([]byte, 2*len(buf))
	}
}

func runHelper(path string) error {
	cmd := exec.Command(path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// restoreDefault stops routing sig to the guard and puts the kernel
// disposition back to SIG_DFL.
func restoreDefault(sig syscall.Signal) error {
	signal.Reset(sig)
	return setDefaultAction(sig)
}

func raiseSelf(sig syscall.Signal) error {
	return unix.Kill(os.Getpid(), sig)
}
