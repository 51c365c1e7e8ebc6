//go:build linux
// +build linux

package server_test

import (
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/momentics/hioload-httpd/api"
	"github.com/momentics/hioload-httpd/protocol"
	"github.com/momentics/hioload-httpd/server"
)

func startEchoServer(t *testing.T, opts ...server.ServerOption) (addr string, srv *server.Server) {
	t.Helper()
	cfg := server.DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.Workers = 2
	cfg.MaxClientsPerWorker = 8
	cfg.ResponderWorkers = 2

	handle := func(p api.SocketReadPayload) api.Response {
		resp := protocol.NewResponse(200, []byte(p.Text))
		resp.SetHeader("Connection", "close")
		return resp
	}
	s, err := server.NewServer(cfg, handle, opts...)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve() }()
	t.Cleanup(func() {
		s.Shutdown()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Serve returned %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Serve did not return after Shutdown")
		}
	})

	port, err := s.Port()
	if err != nil {
		t.Fatalf("Port: %v", err)
	}
	return fmt.Sprintf("127.0.0.1:%d", port), s
}

func roundTrip(t *testing.T, addr, request string) string {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := conn.Write([]byte(request)); err != nil {
		t.Fatalf("request write: %v", err)
	}
	// The server closes after one response; read to EOF.
	raw, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("response read: %v", err)
	}
	return string(raw)
}

func TestServeEchoesRequestAndCloses(t *testing.T) {
	addr, _ := startEchoServer(t)

	request := "GET /hello HTTP/1.1\r\nHost: test\r\n\r\n"
	got := roundTrip(t, addr, request)

	if !strings.HasPrefix(got, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("bad status line in %q", got)
	}
	if !strings.HasSuffix(got, request) {
		t.Fatalf("response does not echo request: %q", got)
	}
}

func TestServeHandlesSequentialConnections(t *testing.T) {
	addr, srv := startEchoServer(t)

	for i := 0; i < 20; i++ {
		request := fmt.Sprintf("GET /req/%d HTTP/1.1\r\n\r\n", i)
		got := roundTrip(t, addr, request)
		if !strings.HasSuffix(got, request) {
			t.Fatalf("request %d: response %q", i, got)
		}
	}

	// Every slot must be back after the connections closed.
	deadline := time.Now().Add(2 * time.Second)
	for {
		total := 0
		for _, w := range srv.Workers() {
			total += w.FreeSlots()
		}
		if total == 2*8 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("slots not fully released: %d", total)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServeRejectsWhenAllWorkersFull(t *testing.T) {
	// One worker, two slots, one of which is headroom: a single live
	// connection saturates the server.
	addr, _ := startEchoServer(t,
		server.WithWorkers(1),
		server.WithMaxClientsPerWorker(2),
	)

	held, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer held.Close()
	time.Sleep(100 * time.Millisecond) // let admission land

	rejected, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer rejected.Close()
	rejected.SetDeadline(time.Now().Add(5 * time.Second))

	// The acceptor closes sockets no worker admits: EOF, no data.
	raw, err := io.ReadAll(rejected)
	if err != nil {
		t.Fatalf("read on rejected conn: %v", err)
	}
	if len(raw) != 0 {
		t.Fatalf("rejected connection received %q", raw)
	}
}
