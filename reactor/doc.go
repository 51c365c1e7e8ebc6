// Copyright (c) 2026
// Author: momentics <momentics@gmail.com>

// Package reactor provides the platform readiness multiplexer behind
// api.Multiplexer: epoll on Linux, with a stub constructor elsewhere.
// The Linux implementation is level-triggered and carries an eventfd
// in its own interest set so other goroutines can interrupt a blocked
// Wait.
package reactor
