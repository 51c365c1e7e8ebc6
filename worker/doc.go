// Copyright (c) 2026
// Author: momentics <momentics@gmail.com>

// Package worker implements the single-threaded connection reactor.
//
// One HTTPWorker runs one reactor loop on one dedicated goroutine. The
// loop owns all multiplexer registrations and all socket reads and
// writes; nothing else touches socket state. Exactly two entry points
// cross into the loop from other goroutines: TryAdmit, which hands
// over a freshly accepted socket through a bounded queue, and
// SendResponse, which stores a completed response in the pending
// store. Both finish with a multiplexer wakeup so the loop services
// the change without waiting for an unrelated readiness event.
package worker
