//go:build unix

package signals

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/daryltucker/y2start/internal/output"
)

// recorder captures the side effects of a handled signal in order.
type recorder struct {
	mu     sync.Mutex
	events []string
	raised chan syscall.Signal
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func newTestGuard(t *testing.T, locations ...string) (*Guard, *recorder, *bytes.Buffer) {
	t.Helper()
	rec := &recorder{raised: make(chan syscall.Signal, 4)}
	stderr := &bytes.Buffer{}

	g := New()
	g.LogLocations = locations
	g.Helper = "/opt/postmortem"
	g.Stderr = stderr
	g.Logger = output.NewLogger(io.Discard, 0)
	g.now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }
	g.stack = func() []byte { return []byte("goroutine 1 [running]:\nmain.main()\n") }
	g.runHelper = func(path string) error {
		rec.add("helper " + path)
		return nil
	}
	g.restore = func(sig syscall.Signal) error {
		rec.add("restore " + Name(sig))
		return nil
	}
	g.raise = func(sig syscall.Signal) error {
		rec.add("raise " + Name(sig))
		rec.raised <- sig
		return nil
	}
	return g, rec, stderr
}

func TestName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "TERM", Name(unix.SIGTERM))
	require.Equal(t, "HUP", Name(unix.SIGHUP))
	require.Equal(t, "ABRT", Name(unix.SIGABRT))
}

func TestHandleSequence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fallback := filepath.Join(dir, "y2signal.log")
	g, rec, stderr := newTestGuard(t, filepath.Join(dir, "missing", "signal"), fallback)

	g.handle(unix.SIGTERM)

	require.Equal(t, "YaST got signal TERM.\n", stderr.String())
	require.Equal(t, []string{"helper /opt/postmortem", "restore TERM", "raise TERM"}, rec.list())

	data, err := os.ReadFile(fallback)
	require.NoError(t, err)
	require.Equal(t,
		"=== 2026-10-19 08:30:00 +0000 ===\n"+
			"YaST got signal TERM.\n"+
			"Backtrace (goroutine dump):\n"+
			"goroutine 1 [running]:\n"+
			"main.main()\n",
		string(data))
}

func TestHandleSurvivesFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	g, rec, _ := newTestGuard(t, filepath.Join(dir, "missing", "signal"))
	g.runHelper = func(path string) error {
		rec.add("helper " + path)
		return errors.New("exit status 1")
	}

	g.handle(unix.SIGINT)

	require.Equal(t, []string{"helper /opt/postmortem", "restore INT", "raise INT"}, rec.list())
}

func TestHandleWithoutHelper(t *testing.T) {
	t.Parallel()

	g, rec, _ := newTestGuard(t, filepath.Join(t.TempDir(), "y2signal.log"))
	g.Helper = ""

	g.handle(unix.SIGHUP)

	require.Equal(t, []string{"restore HUP", "raise HUP"}, rec.list())
}

func TestRunHelperMissingBinary(t *testing.T) {
	t.Parallel()

	err := runHelper(filepath.Join(t.TempDir(), "signal-postmortem"))
	require.Error(t, err)
}

func TestZeroGuardHooksFallBack(t *testing.T) {
	t.Parallel()

	var g Guard
	now, stack, helper, restore, raise := g.hooks()
	require.NotNil(t, now)
	require.NotNil(t, helper)
	require.NotNil(t, restore)
	require.NotNil(t, raise)
	require.Contains(t, string(stack()), "goroutine ")
}

func TestClaimOncePerSignal(t *testing.T) {
	t.Parallel()

	g, _, _ := newTestGuard(t)
	require.True(t, g.claim(unix.SIGTERM))
	require.False(t, g.claim(unix.SIGTERM))
	require.True(t, g.claim(unix.SIGINT))
}

func TestLoopHandlesEachSignalOnce(t *testing.T) {
	t.Parallel()

	g, rec, _ := newTestGuard(t, filepath.Join(t.TempDir(), "y2signal.log"))
	g.Helper = ""

	ch := make(chan os.Signal, 3)
	done := make(chan struct{})
	ch <- unix.SIGTERM
	ch <- unix.SIGTERM
	ch <- unix.SIGQUIT
	close(ch)
	g.loop(ch, done)
	<-done

	require.Equal(t, []string{"restore TERM", "raise TERM", "restore QUIT", "raise QUIT"}, rec.list())
}

// Not parallel: installs real process-wide signal handlers.
func TestInstallInterceptsDeliveredSignal(t *testing.T) {
	if signal.Ignored(unix.SIGHUP) {
		t.Skip("SIGHUP ignored by the environment")
	}
	g, rec, stderr := newTestGuard(t, filepath.Join(t.TempDir(), "y2signal.log"))
	g.Helper = ""

	require.NoError(t, g.Install())
	require.ErrorIs(t, g.Install(), ErrAlreadyInstalled)
	require.True(t, signal.Ignored(unix.SIGPIPE), "SIGPIPE must be ignored")

	require.NoError(t, unix.Kill(os.Getpid(), unix.SIGHUP))

	select {
	case sig := <-rec.raised:
		require.Equal(t, unix.SIGHUP, sig)
	case <-time.After(10 * time.Second):
		t.Fatal("signal was not handled")
	}
	g.Stop()
	g.Stop()

	require.Equal(t, "YaST got signal HUP.\n", stderr.String())
}

const (
	helperEnv     = "Y2START_SIGNAL_HELPER_DIR"
	helperZeroEnv = "Y2START_SIGNAL_HELPER_ZERO"
)

// TestHelperProcess is the child side of the signal death tests.
func TestHelperProcess(t *testing.T) {
	dir := os.Getenv(helperEnv)
	if dir == "" {
		t.Skip("helper process only")
	}

	locations := []string{filepath.Join(dir, "missing", "signal"), filepath.Join(dir, "y2signal.log")}
	helper := filepath.Join(dir, "signal-postmortem")

	g := New()
	if os.Getenv(helperZeroEnv) != "" {
		g = &Guard{}
	}
	g.LogLocations = locations
	g.Helper = helper
	if err := g.Install(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(3)
	}
	fmt.Println("ready")

	time.Sleep(30 * time.Second)
	os.Exit(4)
}

type child struct {
	cmd    *exec.Cmd
	dir    string
	marker string
	stdout io.ReadCloser
	stderr *bytes.Buffer
}

// startChild re-executes the test binary as a guarded child. shellPrefix
// runs in /bin/sh before the exec, e.g. to ignore a signal; core dumps are
// always disabled.
func startChild(t *testing.T, shellPrefix string, env ...string) *child {
	t.Helper()

	dir := t.TempDir()
	marker := filepath.Join(dir, "postmortem-ran")
	script := fmt.Sprintf("#!/bin/sh\ntouch %q\n", marker)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "signal-postmortem"), []byte(script), 0o755))

	cmd := exec.Command("/bin/sh", "-c", "ulimit -c 0; "+shellPrefix+` exec "$0" "$@"`,
		os.Args[0], "-test.run=^TestHelperProcess$")
	cmd.Dir = dir
	cmd.Env = append(append(os.Environ(), helperEnv+"="+dir), env...)
	c := &child{cmd: cmd, dir: dir, marker: marker, stderr: &bytes.Buffer{}}
	cmd.Stderr = c.stderr
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	c.stdout = stdout
	require.NoError(t, cmd.Start())

	ready := false
	sc := bufio.NewScanner(stdout)
	for sc.Scan() {
		if sc.Text() == "ready" {
			ready = true
			break
		}
	}
	require.True(t, ready, "child never became ready")
	return c
}

// wait reaps the child and returns the signal that killed it.
func (c *child) wait(t *testing.T) syscall.Signal {
	t.Helper()
	_, _ = io.Copy(io.Discard, c.stdout)
	err := c.cmd.Wait()

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	require.True(t, ok)
	require.True(t, status.Signaled(), "child exited with %v, want signal death", status)
	return status.Signal()
}

func (c *child) log(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(c.dir, "y2signal.log"))
	require.NoError(t, err)
	return string(data)
}

func TestGuardTerminatesWithSignal(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns child processes")
	}
	t.Parallel()

	tests := []struct {
		name string
		sig  syscall.Signal
		env  []string
	}{
		{name: "TERM", sig: syscall.SIGTERM},
		{name: "INT", sig: syscall.SIGINT},
		{name: "ABRT", sig: syscall.SIGABRT},
		{name: "QUIT", sig: syscall.SIGQUIT},
		{name: "zero value guard", sig: syscall.SIGTERM, env: []string{helperZeroEnv + "=1"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.sig == syscall.SIGQUIT && (runtime.GOOS != "linux" || strings.HasPrefix(runtime.GOARCH, "mips")) {
				t.Skip("QUIT keeps its own identity only where SIG_DFL can be restored")
			}

			c := startChild(t, "", tt.env...)
			require.NoError(t, c.cmd.Process.Signal(tt.sig))
			require.Equal(t, tt.sig, c.wait(t))

			line := "YaST got signal " + Name(tt.sig) + "."
			require.Contains(t, c.stderr.String(), line)
			log := c.log(t)
			require.Contains(t, log, line+"\nBacktrace (goroutine dump):\n")
			require.Contains(t, log, "goroutine ")

			_, err := os.Stat(c.marker)
			require.NoError(t, err, "postmortem helper did not run")
		})
	}
}

func TestGuardLeavesInheritedIgnoreAlone(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a child process")
	}
	t.Parallel()

	// as under nohup: HUP is ignored before the guard is installed
	c := startChild(t, `trap "" HUP;`)
	require.NoError(t, c.cmd.Process.Signal(syscall.SIGHUP))
	require.NoError(t, c.cmd.Process.Signal(syscall.SIGTERM))
	require.Equal(t, syscall.SIGTERM, c.wait(t))

	require.False(t, strings.Contains(c.stderr.String(), "got signal HUP"), "HUP was intercepted")
	require.NotContains(t, c.log(t), "got signal HUP")
	require.Contains(t, c.log(t), "YaST got signal TERM.")
}
