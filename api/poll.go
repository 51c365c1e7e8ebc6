// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Readiness multiplexing abstraction. A Multiplexer watches many
// non-blocking sockets and reports which can be read or written
// without blocking.

package api

// Interest is the readiness condition a registration is watched for.
// A registration is watched for reads or writes, never both: the
// request/response cycle is strictly request-then-response.
type Interest int

const (
	// InterestRead watches the socket for readable data.
	InterestRead Interest = iota
	// InterestWrite watches the socket for write readiness.
	InterestWrite
)

// Event is one readiness notification reported by Wait.
type Event struct {
	FD       int  // registered file descriptor
	Readable bool // ready for read
	Writable bool // ready for write
	Err      bool // error or hangup condition on the socket
}

// Multiplexer is a blocking readiness-polling primitive. All methods
// except Wakeup must be called from the owning reactor-loop goroutine;
// Wakeup is safe from any goroutine and unblocks a concurrent Wait.
type Multiplexer interface {
	// Add registers fd with the given initial interest.
	Add(fd int, interest Interest) error

	// Modify switches the interest of an existing registration.
	Modify(fd int, interest Interest) error

	// Remove cancels a registration; no further events are delivered.
	Remove(fd int) error

	// Wait blocks until at least one registered socket is ready or a
	// Wakeup arrives, filling events and returning the count written.
	// A wakeup with no socket readiness returns zero events.
	Wait(events []Event) (int, error)

	// Wakeup unblocks a Wait in progress (or the next one).
	Wakeup() error

	// Close releases the multiplexer resources.
	Close() error
}
