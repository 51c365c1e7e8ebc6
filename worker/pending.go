// File: worker/pending.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package worker

import (
	"sync"

	"github.com/momentics/hioload-httpd/api"
)

// pendingStore maps a registration to the response awaiting
// transmission. Processing-pool goroutines insert; the reactor loop is
// the sole reader and remover. The ready list carries connections
// whose interest still has to be switched to write on the loop
// thread, so no caller ever mutates registration state directly.
type pendingStore struct {
	mu        sync.Mutex
	responses map[int]api.Response
	ready     []*Conn
}

func newPendingStore() *pendingStore {
	return &pendingStore{responses: make(map[int]api.Response)}
}

// insert stores the response for c and marks it ready for the
// interest switch.
func (p *pendingStore) insert(c *Conn, resp api.Response) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses[c.fd] = resp
	p.ready = append(p.ready, c)
}

// takeReady returns and clears the connections awaiting an interest
// switch. Loop thread only.
func (p *pendingStore) takeReady() []*Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	ready := p.ready
	p.ready = nil
	return ready
}

// take removes and returns the response stored for fd.
func (p *pendingStore) take(fd int) (api.Response, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	resp, ok := p.responses[fd]
	if ok {
		delete(p.responses, fd)
	}
	return resp, ok
}

// remove discards any response stored for fd.
func (p *pendingStore) remove(fd int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.responses, fd)
}

// size reports the number of stored responses.
func (p *pendingStore) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.responses)
}
