//go:build linux
// +build linux

// File: worker/sock_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw socket operations for the reactor loop.

package worker

import "golang.org/x/sys/unix"

// setNonblock flips fd into nonblocking mode before registration.
func setNonblock(fd int) error {
	return unix.SetNonblock(fd, true)
}

// readFD performs one nonblocking read. EAGAIN is normalized to
// errWouldBlock; n is never negative.
func readFD(fd int, buf []byte) (int, error) {
	n, err := unix.Read(fd, buf)
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return 0, errWouldBlock
	}
	if n < 0 {
		n = 0
	}
	return n, err
}

// writeFD performs one write attempt.
func writeFD(fd int, buf []byte) (int, error) {
	n, err := unix.Write(fd, buf)
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return 0, errWouldBlock
	}
	if n < 0 {
		n = 0
	}
	return n, err
}

// closeFD closes the socket descriptor.
func closeFD(fd int) error {
	return unix.Close(fd)
}
