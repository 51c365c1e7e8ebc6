// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error values shared across the library.

package api

import "errors"

var (
	// ErrNotSupported is returned by platform constructors on systems
	// without a readiness multiplexer implementation.
	ErrNotSupported = errors.New("operation not supported on this platform")

	// ErrMuxClosed is returned by multiplexer operations after Close.
	ErrMuxClosed = errors.New("multiplexer is closed")

	// ErrWorkerStopped is returned when an operation races a worker
	// shutdown.
	ErrWorkerStopped = errors.New("worker is stopped")
)
