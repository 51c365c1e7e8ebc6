//go:build !linux
// +build !linux

// File: worker/sock_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package worker

import "github.com/momentics/hioload-httpd/api"

func setNonblock(int) error {
	return api.ErrNotSupported
}

func readFD(int, []byte) (int, error) {
	return 0, api.ErrNotSupported
}

func writeFD(int, []byte) (int, error) {
	return 0, api.ErrNotSupported
}

func closeFD(int) error {
	return api.ErrNotSupported
}
