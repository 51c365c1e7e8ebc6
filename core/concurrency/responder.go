// File: core/concurrency/responder.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ResponderPool drains decoded request payloads from the bounded work
// queue, applies the handler and routes the finished response back to
// the owning worker. It is the processing-pool side of the worker's
// backpressure valve: while all responders are busy and the queue is
// full, reactor loops block on insertion.

package concurrency

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/hioload-httpd/api"
)

// Handler turns one decoded request payload into a response. A nil
// return produces no reply; the connection stays open until the peer
// gives up.
type Handler func(api.SocketReadPayload) api.Response

// ResponderPool is a fixed set of goroutines consuming one shared
// work queue.
type ResponderPool struct {
	workQueue <-chan api.SocketReadPayload
	handle    Handler
	deliver   api.Deliverer
	log       *zap.Logger

	quit   chan struct{}
	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewResponderPool builds a pool of n responders. deliver routes each
// response to the worker handling the originating connection.
func NewResponderPool(n int, workQueue <-chan api.SocketReadPayload, handle Handler, deliver api.Deliverer, log *zap.Logger) *ResponderPool {
	if n <= 0 {
		n = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &ResponderPool{
		workQueue: workQueue,
		handle:    handle,
		deliver:   deliver,
		log:       log,
		quit:      make(chan struct{}),
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.run(i)
	}
	return p
}

func (p *ResponderPool) run(id int) {
	defer p.wg.Done()
	for {
		select {
		case payload := <-p.workQueue:
			p.process(id, payload)
		case <-p.quit:
			return
		}
	}
}

// process applies the handler under a recover boundary: a panicking
// handler must not take the responder down.
func (p *ResponderPool) process(id int, payload api.SocketReadPayload) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("handler panicked, request dropped",
				zap.Int("responder", id), zap.Any("panic", r))
		}
	}()
	resp := p.handle(payload)
	if resp == nil {
		return
	}
	p.deliver.Deliver(payload.Conn, resp)
}

// Close stops all responders. Payloads still queued are left for the
// caller to drain or discard with the queue.
func (p *ResponderPool) Close() {
	if p.closed.CompareAndSwap(false, true) {
		close(p.quit)
		p.wg.Wait()
	}
}
