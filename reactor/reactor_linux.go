//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux epoll(7)-based readiness multiplexer with eventfd wakeup.

package reactor

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-httpd/api"
)

// linuxMux is a level-triggered epoll-based multiplexer.
type linuxMux struct {
	epfd   int
	wakefd int
	raw    []unix.EpollEvent // scratch for EpollWait, loop-thread only
}

// NewMultiplexer constructs the epoll-backed api.Multiplexer for Linux.
func NewMultiplexer() (api.Multiplexer, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, &ev); err != nil {
		unix.Close(wakefd)
		unix.Close(epfd)
		return nil, fmt.Errorf("epoll ctl add wakefd: %w", err)
	}
	return &linuxMux{epfd: epfd, wakefd: wakefd}, nil
}

func epollEvents(interest api.Interest) uint32 {
	if interest == api.InterestWrite {
		return unix.EPOLLOUT
	}
	return unix.EPOLLIN
}

// Add registers fd with the given interest.
func (m *linuxMux) Add(fd int, interest api.Interest) error {
	ev := unix.EpollEvent{Events: epollEvents(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(m.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	return nil
}

// Modify switches the interest of an existing registration.
func (m *linuxMux) Modify(fd int, interest api.Interest) error {
	ev := unix.EpollEvent{Events: epollEvents(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(m.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl mod: %w", err)
	}
	return nil
}

// Remove cancels a registration.
func (m *linuxMux) Remove(fd int) error {
	if err := unix.EpollCtl(m.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

// Wait blocks until readiness or wakeup. A wakeup-only return yields
// zero events; EINTR is treated the same way.
func (m *linuxMux) Wait(events []api.Event) (int, error) {
	if len(m.raw) < len(events)+1 {
		m.raw = make([]unix.EpollEvent, len(events)+1)
	}
	n, err := unix.EpollWait(m.epfd, m.raw[:len(events)+1], -1)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}

	out := 0
	for i := 0; i < n; i++ {
		raw := m.raw[i]
		if int(raw.Fd) == m.wakefd {
			m.drainWakeup()
			continue
		}
		if out == len(events) {
			break
		}
		events[out] = api.Event{
			FD:       int(raw.Fd),
			Readable: raw.Events&unix.EPOLLIN != 0,
			Writable: raw.Events&unix.EPOLLOUT != 0,
			Err:      raw.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0,
		}
		out++
	}
	return out, nil
}

// drainWakeup resets the eventfd counter so the next Wait blocks.
func (m *linuxMux) drainWakeup() {
	var buf [8]byte
	_, _ = unix.Read(m.wakefd, buf[:])
}

// Wakeup unblocks a Wait in progress. Safe from any goroutine.
func (m *linuxMux) Wakeup() error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(m.wakefd, buf[:])
	if err == unix.EAGAIN {
		// Counter saturated: a wakeup is already pending.
		return nil
	}
	return err
}

// Close releases the epoll instance and the wakeup eventfd.
func (m *linuxMux) Close() error {
	err := unix.Close(m.epfd)
	if cerr := unix.Close(m.wakefd); err == nil {
		err = cerr
	}
	return err
}
