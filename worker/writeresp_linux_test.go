//go:build linux
// +build linux

package worker

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-httpd/api"
	"github.com/momentics/hioload-httpd/fake"
)

// A write-ready registration without a stored response is a logic
// error: it must be logged and the connection closed, never left
// half-registered.
func TestWriteResponseMissingEntryClosesDefensively(t *testing.T) {
	const maxClients = 4
	mux := fake.NewFakeMultiplexer()
	queue := make(chan api.SocketReadPayload, 1)
	w, err := New(maxClients, queue, WithMultiplexer(mux))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	client, server := fds[1], fds[0]
	defer unix.Close(client)

	// Hand-build the registration the loop would have created.
	w.freeSlots.Add(-1)
	c := newConn(server, w)
	c.interest = api.InterestWrite
	w.conns[server] = c
	if err := mux.Add(server, api.InterestWrite); err != nil {
		t.Fatalf("mux.Add: %v", err)
	}

	w.writeResponse(c)

	if c.isOpen() {
		t.Fatal("connection left open after missing-response write")
	}
	if got := w.FreeSlots(); got != maxClients {
		t.Fatalf("free slots = %d, want %d", got, maxClients)
	}
	if mux.Registered() != 0 {
		t.Fatal("registration not cancelled")
	}
	buf := make([]byte, 1)
	if n, err := unix.Read(client, buf); err != nil || n != 0 {
		t.Fatalf("peer did not observe close: n=%d err=%v", n, err)
	}
}
