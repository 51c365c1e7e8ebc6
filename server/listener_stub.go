//go:build !linux
// +build !linux

// File: server/listener_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import "github.com/momentics/hioload-httpd/api"

type tcpListener struct{}

func newTCPListener(string, int) (*tcpListener, error) {
	return nil, api.ErrNotSupported
}

func (l *tcpListener) Accept() (int, error) { return -1, api.ErrNotSupported }
func (l *tcpListener) Port() (int, error)   { return 0, api.ErrNotSupported }
func (l *tcpListener) Close() error         { return nil }

func closeRawFD(int) error { return api.ErrNotSupported }
