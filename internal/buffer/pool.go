package buffer

import (
	"github.com/valyala/bytebufferpool"
)

// maxPooledSize caps the buffers returned to the pool so that one huge
// message does not pin a large allocation for the life of the process.
const maxPooledSize = 32 * 1024

var defaultPool bytebufferpool.Pool

// Get retrieves an empty buffer from the shared pool.
// The caller must hand it back with Put.
func Get() *bytebufferpool.ByteBuffer {
	return defaultPool.Get()
}

// Put returns a buffer to the shared pool.
func Put(buf *bytebufferpool.ByteBuffer) {
	if buf == nil {
		return
	}
	if cap(buf.B) > maxPooledSize {
		return
	}
	buf.Reset()
	defaultPool.Put(buf)
}

// String builds a string with a pooled buffer.
func String(fn func(buf *bytebufferpool.ByteBuffer)) string {
	buf := Get()
	defer Put(buf)
	fn(buf)
	return buf.String()
}
