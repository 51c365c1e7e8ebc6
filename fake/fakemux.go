// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package fake provides in-memory test doubles for the library
// interfaces.
package fake

import (
	"fmt"
	"sync"

	"github.com/momentics/hioload-httpd/api"
)

// FakeMultiplexer is a scriptable api.Multiplexer. Tests push
// readiness events with Push; Wait blocks until an event or a Wakeup
// arrives, mirroring the real multiplexer contract.
type FakeMultiplexer struct {
	mu        sync.Mutex
	interests map[int]api.Interest

	events chan api.Event
	wake   chan struct{}
	closed chan struct{}
	once   sync.Once
}

// NewFakeMultiplexer builds an empty fake.
func NewFakeMultiplexer() *FakeMultiplexer {
	return &FakeMultiplexer{
		interests: make(map[int]api.Interest),
		events:    make(chan api.Event, 64),
		wake:      make(chan struct{}, 1),
		closed:    make(chan struct{}),
	}
}

// Push scripts one readiness event for a later Wait.
func (f *FakeMultiplexer) Push(ev api.Event) {
	f.events <- ev
}

// Interest reports the currently registered interest for fd.
func (f *FakeMultiplexer) Interest(fd int) (api.Interest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.interests[fd]
	return i, ok
}

// Registered reports how many fds are registered.
func (f *FakeMultiplexer) Registered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.interests)
}

func (f *FakeMultiplexer) Add(fd int, interest api.Interest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.interests[fd]; ok {
		return fmt.Errorf("fd %d already registered", fd)
	}
	f.interests[fd] = interest
	return nil
}

func (f *FakeMultiplexer) Modify(fd int, interest api.Interest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.interests[fd]; !ok {
		return fmt.Errorf("fd %d not registered", fd)
	}
	f.interests[fd] = interest
	return nil
}

func (f *FakeMultiplexer) Remove(fd int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.interests[fd]; !ok {
		return fmt.Errorf("fd %d not registered", fd)
	}
	delete(f.interests, fd)
	return nil
}

// Wait blocks for a scripted event or a wakeup. Events for fds no
// longer registered are still delivered; the worker must treat them
// as stale.
func (f *FakeMultiplexer) Wait(events []api.Event) (int, error) {
	select {
	case ev := <-f.events:
		events[0] = ev
		n := 1
		for n < len(events) {
			select {
			case more := <-f.events:
				events[n] = more
				n++
			default:
				return n, nil
			}
		}
		return n, nil
	case <-f.wake:
		return 0, nil
	case <-f.closed:
		return 0, api.ErrMuxClosed
	}
}

func (f *FakeMultiplexer) Wakeup() error {
	select {
	case f.wake <- struct{}{}:
	default:
	}
	return nil
}

func (f *FakeMultiplexer) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}
