package worker_test

import (
	"testing"

	"github.com/momentics/hioload-httpd/api"
	"github.com/momentics/hioload-httpd/fake"
	"github.com/momentics/hioload-httpd/worker"
)

func newIdleWorker(t *testing.T, maxClients int, opts ...worker.Option) *worker.HTTPWorker {
	t.Helper()
	queue := make(chan api.SocketReadPayload, 10)
	opts = append([]worker.Option{worker.WithMultiplexer(fake.NewFakeMultiplexer())}, opts...)
	w, err := worker.New(maxClients, queue, opts...)
	if err != nil {
		t.Fatalf("worker.New: %v", err)
	}
	return w
}

func TestTryAdmitKeepsHeadroomSlot(t *testing.T) {
	// maxClients=2: first admission succeeds (2 > 1), after which one
	// slot is free and further admissions are rejected (1 is not > 1).
	w := newIdleWorker(t, 2)

	if !w.TryAdmit(100) {
		t.Fatal("first admission rejected with 2 free slots")
	}
	if got := w.FreeSlots(); got != 1 {
		t.Fatalf("free slots after admission = %d, want 1", got)
	}
	if w.TryAdmit(101) {
		t.Fatal("admission accepted with only the headroom slot left")
	}
	if got := w.FreeSlots(); got != 1 {
		t.Fatalf("failed admission changed free slots to %d", got)
	}
}

func TestTryAdmitSingleSlotWorkerAcceptsNothing(t *testing.T) {
	w := newIdleWorker(t, 1)
	if w.TryAdmit(100) {
		t.Fatal("admission accepted with maxClients=1")
	}
}

func TestTryAdmitCounterStaysInBounds(t *testing.T) {
	const maxClients = 8
	w := newIdleWorker(t, maxClients, worker.WithAdmissionQueueCap(maxClients))

	admitted := 0
	for fd := 0; fd < 2*maxClients; fd++ {
		if w.TryAdmit(fd) {
			admitted++
		}
		slots := w.FreeSlots()
		if slots < 0 || slots > maxClients {
			t.Fatalf("free slots %d out of [0, %d]", slots, maxClients)
		}
		if slots != maxClients-admitted {
			t.Fatalf("free slots %d, want maxClients - admitted = %d", slots, maxClients-admitted)
		}
	}
	// Headroom policy: exactly maxClients-1 admissions can succeed.
	if admitted != maxClients-1 {
		t.Fatalf("admitted %d connections, want %d", admitted, maxClients-1)
	}
}

func TestTryAdmitFullQueueHasNoSideEffects(t *testing.T) {
	w := newIdleWorker(t, 16, worker.WithAdmissionQueueCap(1))

	if !w.TryAdmit(100) {
		t.Fatal("first admission rejected")
	}
	before := w.FreeSlots()
	// Queue bound is 1 and the loop is not draining: the second offer
	// must fail and restore the reserved slot.
	if w.TryAdmit(101) {
		t.Fatal("admission accepted past the queue bound")
	}
	if got := w.FreeSlots(); got != before {
		t.Fatalf("failed admission leaked a slot: %d -> %d", before, got)
	}
}

func TestSendResponseWithForeignHandleIsDropped(t *testing.T) {
	w := newIdleWorker(t, 4)
	// A handle minted outside this worker must not reach the pending
	// store or wake the loop into an interest switch.
	w.SendResponse(foreignConn(7), nopResponse{})
	if w.IsHandling(foreignConn(7)) {
		t.Fatal("worker claims to handle a foreign connection")
	}
}

type foreignConn int

func (c foreignConn) FD() int { return int(c) }

type nopResponse struct{}

func (nopResponse) WireBytes() []byte { return nil }
