package ptyio

import "golang.org/x/sys/unix"

// Darwin/BSD's termios ioctl requests, used by enableISIG.
const (
	ioctlGetTermios = unix.TIOCGETA
	ioctlSetTermios = unix.TIOCSETA
)
