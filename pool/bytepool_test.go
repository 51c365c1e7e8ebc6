package pool_test

import (
	"testing"

	"github.com/momentics/hioload-httpd/pool"
)

func TestBytePoolGetPut(t *testing.T) {
	bp := pool.NewBytePool(1024)

	buf := bp.GetBuffer()
	if len(buf) != 1024 {
		t.Fatalf("expected 1024-byte buffer, got %d", len(buf))
	}
	bp.PutBuffer(buf)

	again := bp.GetBuffer()
	if len(again) != 1024 {
		t.Fatalf("recycled buffer has wrong length %d", len(again))
	}
}

func TestBytePoolRejectsForeignSizes(t *testing.T) {
	bp := pool.NewBytePool(64)
	bp.PutBuffer(make([]byte, 128))

	if got := len(bp.GetBuffer()); got != 64 {
		t.Fatalf("pool handed out foreign buffer of length %d", got)
	}
}

func TestBytePoolTruncatedBufferRestored(t *testing.T) {
	bp := pool.NewBytePool(64)
	buf := bp.GetBuffer()
	bp.PutBuffer(buf[:3])

	if got := len(bp.GetBuffer()); got != 64 {
		t.Fatalf("pool returned truncated buffer of length %d", got)
	}
}
