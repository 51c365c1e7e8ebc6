// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import "sync"

// BytePool recycles fixed-size byte buffers.
type BytePool struct {
	size int
	p    sync.Pool
}

// NewBytePool creates a pool of buffers of exactly size bytes.
func NewBytePool(size int) *BytePool {
	bp := &BytePool{size: size}
	bp.p.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return bp
}

// Size returns the fixed buffer size.
func (b *BytePool) Size() int {
	return b.size
}

// GetBuffer returns a buffer from the pool, length Size.
func (b *BytePool) GetBuffer() []byte {
	return *(b.p.Get().(*[]byte))
}

// PutBuffer returns a buffer to the pool. Foreign-sized buffers are
// dropped so the pool stays homogeneous.
func (b *BytePool) PutBuffer(buf []byte) {
	if cap(buf) != b.size {
		return
	}
	buf = buf[:b.size]
	b.p.Put(&buf)
}
