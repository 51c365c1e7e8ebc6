// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/momentics/hioload-httpd/api"
	"github.com/momentics/hioload-httpd/core/concurrency"
	"github.com/momentics/hioload-httpd/worker"
)

var ErrAlreadyRunning = errors.New("server already running")

// NewServer builds the Server facade around handle, the request
// handler supplied by the HTTP method-dispatch layer.
func NewServer(cfg *Config, handle concurrency.Handler, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if handle == nil {
		return nil, fmt.Errorf("server: nil handler")
	}
	s := &Server{
		cfg:      cfg,
		log:      zap.NewNop(),
		handle:   handle,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		ready:    make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Serve starts the workers, the responder pool and the accept loop.
// It blocks until Shutdown.
func (s *Server) Serve() error {
	if s.ln != nil {
		return ErrAlreadyRunning
	}

	workQueue := make(chan api.SocketReadPayload, s.cfg.WorkQueueCapacity)

	s.workers = make([]*worker.HTTPWorker, 0, s.cfg.Workers)
	for i := 0; i < s.cfg.Workers; i++ {
		w, err := worker.New(s.cfg.MaxClientsPerWorker, workQueue,
			worker.WithLogger(s.log.With(zap.Int("worker", i))),
			worker.WithReadBufferSize(s.cfg.ReadBufferSize),
		)
		if err != nil {
			s.stopWorkers()
			return fmt.Errorf("server: worker %d: %w", i, err)
		}
		s.workers = append(s.workers, w)
		go w.Run()
	}

	s.pool = concurrency.NewResponderPool(s.cfg.ResponderWorkers, workQueue, s.handle, s, s.log)

	ln, err := newTCPListener(s.cfg.ListenAddr, s.cfg.Backlog)
	if err != nil {
		s.pool.Close()
		s.stopWorkers()
		return fmt.Errorf("server: listen: %w", err)
	}
	s.ln = ln
	close(s.ready)
	s.log.Info("accepting connections", zap.String("addr", s.cfg.ListenAddr))

	s.acceptLoop()

	s.pool.Close()
	s.stopWorkers()
	close(s.done)
	return nil
}

func (s *Server) acceptLoop() {
	for {
		fd, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}
		s.dispatch(fd)
	}
}

// dispatch offers the socket to workers, most free slots first. If
// every worker rejects it the socket is closed: the caller sees a
// reset instead of an indefinitely unserviced connection.
func (s *Server) dispatch(fd int) {
	order := make([]*worker.HTTPWorker, len(s.workers))
	copy(order, s.workers)
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j].FreeSlots() > order[j-1].FreeSlots(); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	for _, w := range order {
		if w.TryAdmit(fd) {
			return
		}
	}
	s.log.Warn("all workers at capacity, rejecting connection", zap.Int("fd", fd))
	if err := closeRawFD(fd); err != nil {
		s.log.Warn("closing rejected socket failed", zap.Int("fd", fd), zap.Error(err))
	}
}

// Deliver routes a finished response to the worker handling conn.
// Implements api.Deliverer for the responder pool.
func (s *Server) Deliver(conn api.Conn, resp api.Response) {
	for _, w := range s.workers {
		if w.IsHandling(conn) {
			w.SendResponse(conn, resp)
			return
		}
	}
	s.log.Debug("response for a connection no worker is handling", zap.Int("fd", conn.FD()))
}

// Shutdown stops accepting, then stops the responder pool and all
// workers. Blocks until Serve has returned.
func (s *Server) Shutdown() error {
	select {
	case <-s.shutdown:
		return nil
	default:
	}
	close(s.shutdown)
	var err error
	if s.ln != nil {
		err = s.ln.Close()
		<-s.done
	}
	return err
}

func (s *Server) stopWorkers() {
	for _, w := range s.workers {
		w.Stop()
	}
}

// Port blocks until the listener is bound, then returns its local
// port. Useful when serving on ":0".
func (s *Server) Port() (int, error) {
	<-s.ready
	return s.ln.Port()
}

// Workers exposes the worker set; used by tests and diagnostics.
func (s *Server) Workers() []*worker.HTTPWorker {
	return s.workers
}
