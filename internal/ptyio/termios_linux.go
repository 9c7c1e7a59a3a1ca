package ptyio

import "golang.org/x/sys/unix"

// Linux's termios ioctl requests, used by enableISIG.
const (
	ioctlGetTermios = unix.TCGETS
	ioctlSetTermios = unix.TCSETS
)
