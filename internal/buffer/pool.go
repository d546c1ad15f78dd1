package buffer

import (
	"bytes"
	"sync"
)

// maxPooledSize caps the buffers kept for reuse; a fault with a very long
// stack trace should not pin its buffer forever.
const maxPooledSize = 64 * 1024

// BufferPool recycles the buffers entries are encoded into.
type BufferPool struct {
	pool     sync.Pool
	capacity int
}

// NewBufferPool creates a pool of 512 byte buffers, enough for a typical
// message entry.
func NewBufferPool() *BufferPool {
	return NewBufferPoolWithCapacity(512)
}

// NewBufferPoolWithCapacity creates a pool whose new buffers start with the
// given capacity.
func NewBufferPoolWithCapacity(capacity int) *BufferPool {
	bp := &BufferPool{capacity: capacity}
	bp.pool.New = func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, capacity))
	}
	return bp
}

// Get returns an empty buffer.
func (bp *BufferPool) Get() *bytes.Buffer {
	buf := bp.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// Put returns buf to the pool. Oversized buffers are dropped.
func (bp *BufferPool) Put(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledSize {
		return
	}
	buf.Reset()
	bp.pool.Put(buf)
}

// Bytes copies the contents of buf, so buf can go back to the pool.
func Bytes(buf *bytes.Buffer) []byte {
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}
