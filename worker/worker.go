// File: worker/worker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// HTTPWorker: the reactor loop, admission gate and read/write
// handlers for one worker's set of client sockets.

package worker

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/momentics/hioload-httpd/api"
	"github.com/momentics/hioload-httpd/pool"
	"github.com/momentics/hioload-httpd/reactor"
)

const (
	// DefaultReadBufferSize is the per-read buffer. Requests larger
	// than this arrive across multiple readiness events and are NOT
	// reassembled; each read produces its own payload.
	DefaultReadBufferSize = 16 * 1024

	// maxEventsPerWait caps how many readiness events one Wait call
	// may report.
	maxEventsPerWait = 128
)

// errWouldBlock normalizes EAGAIN/EWOULDBLOCK from the platform
// socket layer: readiness was spurious, the registration stays as is.
var errWouldBlock = errors.New("socket operation would block")

// HTTPWorker implements api.Worker.
var _ api.Worker = (*HTTPWorker)(nil)

// HTTPWorker multiplexes up to maxClients client sockets over one
// readiness-polling loop. See the package comment for the threading
// model.
type HTTPWorker struct {
	maxClients int
	freeSlots  atomic.Int32

	mux     api.Multiplexer
	admitQ  *admissionQueue
	pending *pendingStore

	// conns is the registration table, confined to the Run goroutine.
	conns map[int]*Conn

	workQueue chan<- api.SocketReadPayload
	bufs      *pool.BytePool
	log       *zap.Logger

	quit    chan struct{}
	done    chan struct{}
	running atomic.Bool
	stopped atomic.Bool
}

// Option customizes worker construction.
type Option func(*HTTPWorker)

// WithLogger attaches a structured logger. Default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *HTTPWorker) {
		w.log = log
	}
}

// WithMultiplexer substitutes the readiness multiplexer. Intended for
// tests; the default is the platform multiplexer.
func WithMultiplexer(mux api.Multiplexer) Option {
	return func(w *HTTPWorker) {
		w.mux = mux
	}
}

// WithReadBufferSize overrides the per-read buffer size.
func WithReadBufferSize(size int) Option {
	return func(w *HTTPWorker) {
		if size > 0 {
			w.bufs = pool.NewBytePool(size)
		}
	}
}

// WithAdmissionQueueCap overrides the admission queue bound.
func WithAdmissionQueueCap(capacity int) Option {
	return func(w *HTTPWorker) {
		w.admitQ = newAdmissionQueue(capacity)
	}
}

// New constructs a worker that pushes decoded requests to workQueue.
// Insertion into a full workQueue blocks the reactor loop: that is
// the backpressure valve, and it throttles this whole worker, so size
// the queue accordingly.
func New(maxClients int, workQueue chan<- api.SocketReadPayload, opts ...Option) (*HTTPWorker, error) {
	if maxClients <= 0 {
		return nil, fmt.Errorf("worker: maxClients must be positive, got %d", maxClients)
	}
	if workQueue == nil {
		return nil, fmt.Errorf("worker: nil work queue")
	}
	w := &HTTPWorker{
		maxClients: maxClients,
		admitQ:     newAdmissionQueue(DefaultAdmissionQueueCap),
		pending:    newPendingStore(),
		conns:      make(map[int]*Conn),
		workQueue:  workQueue,
		bufs:       pool.NewBytePool(DefaultReadBufferSize),
		log:        zap.NewNop(),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	w.freeSlots.Store(int32(maxClients))
	for _, o := range opts {
		o(w)
	}
	if w.mux == nil {
		mux, err := reactor.NewMultiplexer()
		if err != nil {
			return nil, fmt.Errorf("worker: %w", err)
		}
		w.mux = mux
	}
	return w, nil
}

// Run executes the reactor loop until Stop. It must run on its own
// dedicated goroutine; all registration and socket I/O happens here.
func (w *HTTPWorker) Run() {
	if !w.running.CompareAndSwap(false, true) {
		return
	}
	defer w.teardown()

	events := make([]api.Event, maxEventsPerWait)
	for {
		n, err := w.mux.Wait(events)
		if err != nil {
			// The loop itself is never fatal.
			w.log.Error("multiplexer wait failed", zap.Error(err))
			continue
		}

		select {
		case <-w.quit:
			return
		default:
		}

		w.registerAdmitted()
		w.switchToWrite()

		for i := 0; i < n; i++ {
			w.dispatch(events[i])
		}
	}
}

// Stop terminates the loop, closes all remaining connections and
// releases the multiplexer.
func (w *HTTPWorker) Stop() {
	if !w.stopped.CompareAndSwap(false, true) {
		if w.running.Load() {
			<-w.done
		}
		return
	}
	close(w.quit)
	_ = w.mux.Wakeup()
	if w.running.Load() {
		<-w.done
	}
}

// teardown drains loop-owned state after Run exits.
func (w *HTTPWorker) teardown() {
	for _, c := range w.conns {
		w.closeConn(c)
	}
	for {
		fd, ok := w.admitQ.poll()
		if !ok {
			break
		}
		if err := closeFD(fd); err != nil {
			w.log.Warn("closing undrained admitted socket failed", zap.Int("fd", fd), zap.Error(err))
		}
		w.freeSlots.Add(1)
	}
	if err := w.mux.Close(); err != nil {
		w.log.Warn("multiplexer close failed", zap.Error(err))
	}
	close(w.done)
}

// TryAdmit offers a raw socket to this worker. Admission succeeds
// only while more than one slot is free; the last slot stays as
// headroom, preserving the reference gate policy. Safe from any
// goroutine.
func (w *HTTPWorker) TryAdmit(fd int) bool {
	if w.stopped.Load() {
		return false
	}
	for {
		slots := w.freeSlots.Load()
		if slots <= 1 {
			return false
		}
		if w.freeSlots.CompareAndSwap(slots, slots-1) {
			break
		}
	}
	if !w.admitQ.offer(fd) {
		// Queue full: no side effects, give the slot back.
		w.freeSlots.Add(1)
		return false
	}
	if err := w.mux.Wakeup(); err != nil {
		w.log.Warn("admission wakeup failed", zap.Error(err))
	}
	return true
}

// SendResponse stores the response for conn and wakes the loop, which
// performs the actual interest switch on its own thread. Safe from
// any goroutine.
func (w *HTTPWorker) SendResponse(conn api.Conn, resp api.Response) {
	c, ok := conn.(*Conn)
	if !ok || c.owner != w {
		w.log.Error("response delivery with foreign connection handle")
		return
	}
	if resp == nil {
		w.log.Error("nil response for connection", zap.Int("fd", c.fd))
		return
	}
	if !c.isOpen() {
		w.log.Debug("response dropped, connection already closed", zap.Int("fd", c.fd))
		return
	}
	w.pending.insert(c, resp)
	if err := w.mux.Wakeup(); err != nil {
		w.log.Warn("response wakeup failed", zap.Error(err))
	}
}

// IsHandling reports whether conn belongs to this worker and is still
// live. Safe from any goroutine.
func (w *HTTPWorker) IsHandling(conn api.Conn) bool {
	c, ok := conn.(*Conn)
	return ok && c.owner == w && c.isOpen()
}

// FreeSlots returns the number of free admission slots.
func (w *HTTPWorker) FreeSlots() int {
	return int(w.freeSlots.Load())
}

// MaxClients returns the worker capacity.
func (w *HTTPWorker) MaxClients() int {
	return w.maxClients
}

// registerAdmitted drains at most one newly admitted socket per
// iteration: nonblocking mode, read interest, registration entry.
func (w *HTTPWorker) registerAdmitted() {
	fd, ok := w.admitQ.poll()
	if !ok {
		return
	}
	if err := setNonblock(fd); err != nil {
		w.log.Error("configuring nonblocking mode failed", zap.Int("fd", fd), zap.Error(err))
		w.abortAdmission(fd)
		return
	}
	if err := w.mux.Add(fd, api.InterestRead); err != nil {
		w.log.Error("registering admitted socket failed", zap.Int("fd", fd), zap.Error(err))
		w.abortAdmission(fd)
		return
	}
	c := newConn(fd, w)
	c.interest = api.InterestRead
	w.conns[fd] = c
	w.log.Debug("connection admitted", zap.Int("fd", fd))
}

// abortAdmission discards a socket that could not be registered and
// gives its slot back.
func (w *HTTPWorker) abortAdmission(fd int) {
	if err := closeFD(fd); err != nil {
		w.log.Warn("socket close failed", zap.Int("fd", fd), zap.Error(err))
	}
	w.freeSlots.Add(1)
}

// switchToWrite applies deferred interest switches for connections
// whose response arrived since the last iteration.
func (w *HTTPWorker) switchToWrite() {
	for _, c := range w.pending.takeReady() {
		cur, ok := w.conns[c.fd]
		if !ok || cur != c || !c.isOpen() {
			w.pending.remove(c.fd)
			continue
		}
		if err := w.mux.Modify(c.fd, api.InterestWrite); err != nil {
			w.log.Error("switching to write interest failed", zap.Int("fd", c.fd), zap.Error(err))
			w.closeConn(c)
			continue
		}
		c.interest = api.InterestWrite
	}
}

// dispatch routes one readiness event. Events for unknown or closed
// registrations are stale notifications and are skipped.
func (w *HTTPWorker) dispatch(ev api.Event) {
	c, ok := w.conns[ev.FD]
	if !ok || !c.isOpen() {
		return
	}
	if ev.Err {
		w.closeConn(c)
		return
	}
	switch {
	case ev.Readable && c.interest == api.InterestRead:
		w.readRequest(c)
	case ev.Writable && c.interest == api.InterestWrite:
		w.writeResponse(c)
	}
}

// readRequest reads once into a pooled buffer, decodes UTF-8 and
// pushes the payload to the work queue. Zero bytes means the peer
// shut down cleanly; both that and a read error close the connection.
// A decode failure drops the payload and leaves the connection
// registered for read: no response is ever produced for malformed
// input, the client is expected to retry or disconnect.
func (w *HTTPWorker) readRequest(c *Conn) {
	buf := w.bufs.GetBuffer()
	defer w.bufs.PutBuffer(buf)

	n, err := readFD(c.fd, buf)
	if err != nil {
		if errors.Is(err, errWouldBlock) {
			return
		}
		w.log.Debug("read failed, closing connection", zap.Int("fd", c.fd), zap.Error(err))
		w.closeConn(c)
		return
	}
	if n == 0 {
		w.closeConn(c)
		return
	}

	data := buf[:n]
	if !utf8.Valid(data) {
		w.log.Error("request bytes are not valid UTF-8, payload dropped", zap.Int("fd", c.fd))
		return
	}

	payload := api.SocketReadPayload{Conn: c, Text: string(data)}
	// Blocking insert: the deliberate backpressure point. It stalls
	// this entire worker, not just c, while the queue is full.
	select {
	case w.workQueue <- payload:
	case <-w.quit:
	}
}

// writeResponse writes the pending response in a single attempt and
// closes the connection regardless of the outcome. Partial writes are
// not resumed across readiness events.
func (w *HTTPWorker) writeResponse(c *Conn) {
	resp, ok := w.pending.take(c.fd)
	if !ok {
		// Write interest without a stored response is a logic error.
		w.log.Error("no pending response for writable connection", zap.Int("fd", c.fd))
		w.closeConn(c)
		return
	}
	wire := resp.WireBytes()
	written, err := writeFD(c.fd, wire)
	if err != nil {
		w.log.Error("write failed", zap.Int("fd", c.fd), zap.Error(err))
	} else if written < len(wire) {
		w.log.Warn("partial response write",
			zap.Int("fd", c.fd), zap.Int("written", written), zap.Int("total", len(wire)))
	}
	w.closeConn(c)
}

// closeConn tears a connection down exactly once: socket closed,
// registration cancelled, pending response dropped, slot released.
// Loop thread only.
func (w *HTTPWorker) closeConn(c *Conn) {
	if !c.beginClose() {
		return
	}
	if err := w.mux.Remove(c.fd); err != nil {
		w.log.Debug("deregistration failed", zap.Int("fd", c.fd), zap.Error(err))
	}
	if err := closeFD(c.fd); err != nil {
		w.log.Warn("socket close failed", zap.Int("fd", c.fd), zap.Error(err))
	}
	delete(w.conns, c.fd)
	w.pending.remove(c.fd)
	w.freeSlots.Add(1)
	c.finishClose()
	w.log.Debug("connection closed", zap.Int("fd", c.fd))
}
