// File: worker/conn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package worker

import (
	"sync/atomic"

	"github.com/momentics/hioload-httpd/api"
)

// connState tags the connection lifecycle so close is idempotent: a
// second close attempt (read error followed by a write attempt on the
// same registration, for instance) must not release the admission
// slot twice.
type connState int32

const (
	stateOpen connState = iota
	stateClosing
	stateClosed
)

// Conn is the registration handle bound 1:1 to an admitted socket.
// The interest field is owned by the reactor loop; state is the only
// cross-goroutine field.
type Conn struct {
	fd       int
	owner    *HTTPWorker
	interest api.Interest
	state    atomic.Int32
}

func newConn(fd int, owner *HTTPWorker) *Conn {
	return &Conn{fd: fd, owner: owner}
}

// FD returns the underlying socket descriptor.
func (c *Conn) FD() int {
	return c.fd
}

func (c *Conn) isOpen() bool {
	return connState(c.state.Load()) == stateOpen
}

// beginClose transitions OPEN -> CLOSING. Only the caller that wins
// this transition performs the teardown.
func (c *Conn) beginClose() bool {
	return c.state.CompareAndSwap(int32(stateOpen), int32(stateClosing))
}

// finishClose marks teardown complete.
func (c *Conn) finishClose() {
	c.state.Store(int32(stateClosed))
}
