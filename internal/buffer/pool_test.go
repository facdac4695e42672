package buffer

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/bytebufferpool"
)

func TestGetReturnsEmptyBuffer(t *testing.T) {
	buf := Get()
	_, _ = buf.WriteString("dirty")
	Put(buf)

	buf = Get()
	defer Put(buf)
	assert.Equal(t, 0, buf.Len())
}

func TestPutDropsLargeBuffers(t *testing.T) {
	buf := Get()
	_, _ = buf.WriteString(strings.Repeat("x", maxPooledSize+1))
	Put(buf)
	Put(nil)
}

func TestStringConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := String(func(buf *bytebufferpool.ByteBuffer) {
				_, _ = buf.WriteString("hello ")
				_, _ = buf.WriteString("world")
			})
			assert.Equal(t, "hello world", s)
		}()
	}
	wg.Wait()
}
