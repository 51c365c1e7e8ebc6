// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker contracts: the admission/response surface a worker exposes to
// the acceptor and to the processing pool.

package api

// Conn is the opaque registration handle bound 1:1 to an admitted
// socket. It is owned by the worker's reactor loop; other goroutines
// hold it only to address SendResponse calls.
type Conn interface {
	// FD returns the underlying socket descriptor.
	FD() int
}

// Response is a completed response awaiting transmission. The core
// never inspects the wire form; formatting is the HTTP layer's job.
type Response interface {
	// WireBytes returns the exact byte representation written to the
	// socket: start line, headers and body.
	WireBytes() []byte
}

// SocketReadPayload is the immutable value produced by a successful
// read: the originating connection handle plus the decoded text.
// It is created on the reactor loop and consumed exactly once by the
// processing pool.
type SocketReadPayload struct {
	Conn Conn
	Text string
}

// Worker multiplexes many client sockets over one readiness-polling
// loop, bounded by a fixed number of admission slots.
//
// Run is the loop itself and must execute on a single dedicated
// goroutine. TryAdmit and SendResponse are the only cross-goroutine
// entry points; both communicate with the loop through queues plus a
// multiplexer wakeup, never by touching socket state directly.
type Worker interface {
	// Run executes the reactor loop until Stop is called.
	Run()

	// Stop terminates the loop and releases the multiplexer.
	Stop()

	// TryAdmit offers a raw socket to this worker. It reports whether
	// the worker accepted it; on false the caller keeps ownership and
	// routes the socket elsewhere.
	TryAdmit(fd int) bool

	// SendResponse stores the response for conn and switches the
	// registration to write interest. Safe from any goroutine.
	SendResponse(conn Conn, resp Response)

	// IsHandling reports whether conn is currently registered with
	// this worker.
	IsHandling(conn Conn) bool

	// FreeSlots returns the number of free admission slots.
	FreeSlots() int
}

// Deliverer routes a completed response back to the worker handling
// the connection. Implemented by the acceptor facade over its worker
// set.
type Deliverer interface {
	Deliver(conn Conn, resp Response)
}
