// File: server/options.go
// Package server defines functional options for the Server facade.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import "go.uber.org/zap"

// ServerOption customizes server initialization.
type ServerOption func(*Server)

// WithLogger attaches a structured logger to the server and its
// workers.
func WithLogger(log *zap.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithWorkers overrides the number of reactor workers.
func WithWorkers(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.cfg.Workers = n
		}
	}
}

// WithMaxClientsPerWorker overrides per-worker admission capacity.
func WithMaxClientsPerWorker(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.cfg.MaxClientsPerWorker = n
		}
	}
}

// WithWorkQueueCapacity overrides the bounded work queue size.
func WithWorkQueueCapacity(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.cfg.WorkQueueCapacity = n
		}
	}
}
