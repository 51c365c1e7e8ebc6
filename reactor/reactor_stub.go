//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import "github.com/momentics/hioload-httpd/api"

// NewMultiplexer reports that no readiness multiplexer exists for this
// platform.
func NewMultiplexer() (api.Multiplexer, error) {
	return nil, api.ErrNotSupported
}
