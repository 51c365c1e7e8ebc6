// File: worker/admission.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package worker

import (
	"sync"

	"github.com/eapache/queue"
)

// DefaultAdmissionQueueCap bounds how many admitted sockets may wait
// for registration between loop iterations.
const DefaultAdmissionQueueCap = 10

// admissionQueue is the bounded handoff between acceptor goroutines
// and the reactor loop. offer is called by admitters, poll only by
// the loop.
type admissionQueue struct {
	mu  sync.Mutex
	q   *queue.Queue
	cap int
}

func newAdmissionQueue(capacity int) *admissionQueue {
	if capacity <= 0 {
		capacity = DefaultAdmissionQueueCap
	}
	return &admissionQueue{q: queue.New(), cap: capacity}
}

// offer enqueues fd unless the queue is full.
func (a *admissionQueue) offer(fd int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.q.Length() >= a.cap {
		return false
	}
	a.q.Add(fd)
	return true
}

// poll dequeues one fd, non-blocking.
func (a *admissionQueue) poll() (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.q.Length() == 0 {
		return 0, false
	}
	return a.q.Remove().(int), true
}
