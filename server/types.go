// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/momentics/hioload-httpd/core/concurrency"
	"github.com/momentics/hioload-httpd/worker"
)

// Config holds all acceptor-side configuration parameters.
type Config struct {
	ListenAddr          string // TCP bind address, e.g. ":8080"
	Workers             int    // number of reactor workers
	MaxClientsPerWorker int    // admission slots per worker
	WorkQueueCapacity   int    // bounded request queue shared by all workers
	ResponderWorkers    int    // processing-pool size
	ReadBufferSize      int    // per-read buffer size
	Backlog             int    // listen(2) backlog
}

// DefaultConfig returns sensible defaults. The work queue is kept
// small on purpose: it is the backpressure valve between reactor
// loops and the responder pool.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:          ":8080",
		Workers:             runtime.NumCPU(),
		MaxClientsPerWorker: 64,
		WorkQueueCapacity:   10,
		ResponderWorkers:    4,
		ReadBufferSize:      worker.DefaultReadBufferSize,
		Backlog:             128,
	}
}

// Server wires listener, reactor workers and responder pool together
// and distributes accepted sockets across the workers.
type Server struct {
	cfg     *Config
	log     *zap.Logger
	handle  concurrency.Handler
	workers []*worker.HTTPWorker
	pool    *concurrency.ResponderPool
	ln      *tcpListener

	shutdown chan struct{}
	done     chan struct{}
	ready    chan struct{}
}
