package ptyio

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// ForwardSignals relays SIGINT, SIGTSTP, and SIGQUIT to the pty's
// current foreground process group instead of the wrapper's own
// process: a raw-mode terminal never delivers them to the child itself,
// so the wrapper must look up the foreground pgrp (TIOCGPGRP on the pty
// master mirrors the slave's) and forward by hand. The returned func
// stops forwarding.
func ForwardSignals(master *os.File) func() {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, unix.SIGINT, unix.SIGTSTP, unix.SIGQUIT)

	done := make(chan struct{})
	go func() {
		fd := int(master.Fd())
		for {
			select {
			case sig := <-ch:
				pgid, err := unix.IoctlGetInt(fd, unix.TIOCGPGRP)
				if err != nil {
					continue
				}
				_ = syscall.Kill(-pgid, sig.(syscall.Signal))
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
