//go:build linux
// +build linux

// File: server/listener_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw-fd TCP listener. Accepted sockets are handed to workers as bare
// descriptors, so the listener stays below net.Listener on purpose.

package server

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

type tcpListener struct {
	fd int
}

func newTCPListener(addr string, backlog int) (*tcpListener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", addr, err)
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("socket create: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("SO_REUSEADDR: %w", err)
	}

	sa := &unix.SockaddrInet4{Port: tcpAddr.Port}
	if ip4 := tcpAddr.IP.To4(); ip4 != nil {
		copy(sa.Addr[:], ip4)
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %q: %w", addr, err)
	}
	if backlog <= 0 {
		backlog = unix.SOMAXCONN
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listen: %w", err)
	}
	return &tcpListener{fd: fd}, nil
}

// Accept blocks for the next connection and returns its descriptor
// with TCP_NODELAY set.
func (l *tcpListener) Accept() (int, error) {
	nfd, _, err := unix.Accept4(l.fd, unix.SOCK_CLOEXEC)
	if err != nil {
		return -1, fmt.Errorf("accept: %w", err)
	}
	_ = unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	return nfd, nil
}

// Port returns the bound local port; useful when listening on :0.
func (l *tcpListener) Port() (int, error) {
	sa, err := unix.Getsockname(l.fd)
	if err != nil {
		return 0, err
	}
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, fmt.Errorf("unexpected sockaddr %T", sa)
	}
	return in4.Port, nil
}

func (l *tcpListener) Close() error {
	return unix.Close(l.fd)
}

func closeRawFD(fd int) error {
	return unix.Close(fd)
}
