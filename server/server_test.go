package server_test

import (
	"testing"

	"github.com/momentics/hioload-httpd/api"
	"github.com/momentics/hioload-httpd/protocol"
	"github.com/momentics/hioload-httpd/server"
)

func TestDefaultConfig(t *testing.T) {
	cfg := server.DefaultConfig()
	if cfg.Workers <= 0 {
		t.Error("default worker count not positive")
	}
	if cfg.MaxClientsPerWorker <= 0 {
		t.Error("default per-worker capacity not positive")
	}
	if cfg.WorkQueueCapacity != 10 {
		t.Errorf("default work queue capacity = %d, want 10", cfg.WorkQueueCapacity)
	}
	if cfg.ReadBufferSize != 16*1024 {
		t.Errorf("default read buffer = %d, want 16 KiB", cfg.ReadBufferSize)
	}
}

func TestNewServerRejectsNilHandler(t *testing.T) {
	if _, err := server.NewServer(nil, nil); err == nil {
		t.Fatal("NewServer accepted a nil handler")
	}
}

func TestNewServerAppliesOptions(t *testing.T) {
	handle := func(api.SocketReadPayload) api.Response {
		return protocol.NewResponse(200, nil)
	}
	s, err := server.NewServer(nil, handle,
		server.WithWorkers(3),
		server.WithMaxClientsPerWorker(7),
		server.WithWorkQueueCapacity(42),
	)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if s == nil {
		t.Fatal("nil server")
	}
}
