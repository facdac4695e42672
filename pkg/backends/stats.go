package backends

import (
	"sync"
	"time"

	"github.com/wayneeseguin/lumen/pkg/types"
)

// counters tracks write statistics for a stream.
type counters struct {
	mu    sync.Mutex
	stats types.Stats
}

func (c *counters) record(n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if err != nil {
		c.stats.ErrorCount++
		c.stats.LastError = now
		return
	}
	c.stats.WriteCount++
	if n > 0 {
		c.stats.BytesWritten += uint64(n)
	}
	c.stats.LastWrite = now
}

func (c *counters) snapshot() types.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
