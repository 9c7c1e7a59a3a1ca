// Package ptyio opens and drives the pseudo-terminal that hosts the
// child shell: raw-mode stdin, winsize synchronization, and the event
// loop (one goroutine per direction) that ties pty reads/writes to an
// internal/shellio.Session.
package ptyio

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"

	"github.com/creack/pty"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
	"golang.org/x/sys/unix"
)

// ErrNotATTY is returned by RawMode when stdin isn't a real terminal —
// wrapping a pty session only makes sense when there's a real terminal
// on the other end of stdin to put into raw mode.
var ErrNotATTY = fmt.Errorf("ptyio: stdin is not a tty")

// PTY wraps a started child shell and its pty master end.
type PTY struct {
	Master *os.File
	Cmd    *exec.Cmd
}

// Start forks shellPath as a session leader attached to a fresh pty,
// the same way creack/pty's Start helper does for any child process.
func Start(shellPath string, args []string, env []string) (*PTY, error) {
	cmd := exec.Command(shellPath, args...)
	cmd.Env = env
	master, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("start pty: %w", err)
	}
	return &PTY{Master: master, Cmd: cmd}, nil
}

// Close releases the pty master fd. The child is not killed — callers
// that need to terminate the child should signal it first.
func (p *PTY) Close() error {
	return p.Master.Close()
}

// RawMode puts the controlling terminal (stdin) into raw mode and
// returns a restore function to call on shutdown. It refuses to do so
// when stdin isn't a tty at all (piped input, a CI runner, etc.) — there
// would be nothing sensible to restore and the pty relay wouldn't behave
// like an interactive session anyway.
//
// term.MakeRaw clears ISIG along with ICANON/ECHO (standard cfmakeraw
// semantics), which would stop the kernel from generating SIGINT/SIGTSTP/
// SIGQUIT for Ctrl-C/Ctrl-Z/Ctrl-\ — signals ForwardSignals needs in
// order to relay them to the child. ISIG is restored immediately after.
func RawMode() (restore func(), err error) {
	fd := int(os.Stdin.Fd())
	if !isatty.IsTerminal(uintptr(fd)) && !isatty.IsCygwinTerminal(uintptr(fd)) {
		return nil, ErrNotATTY
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("set raw mode: %w", err)
	}
	if err := enableISIG(fd); err != nil {
		_ = term.Restore(fd, old)
		return nil, fmt.Errorf("re-enable ISIG: %w", err)
	}
	return func() { _ = term.Restore(fd, old) }, nil
}

// enableISIG re-sets the ISIG bit that term.MakeRaw clears, so the kernel
// still generates SIGINT/SIGTSTP/SIGQUIT for the Signal Forwarder to
// relay to the child shell.
func enableISIG(fd int) error {
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return err
	}
	termios.Lflag |= unix.ISIG
	return unix.IoctlSetTermios(fd, ioctlSetTermios, termios)
}

// WatchWinsize mirrors stdin's window size onto the pty master whenever
// SIGWINCH arrives, plus once immediately so the child starts out
// correctly sized. The returned func stops the watch.
func WatchWinsize(master *os.File) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.SIGWINCH)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				_ = pty.InheritSize(os.Stdin, master)
			case <-done:
				return
			}
		}
	}()
	ch <- unix.SIGWINCH

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
