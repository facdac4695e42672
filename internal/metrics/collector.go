package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/wayneeseguin/lumen/pkg/types"
)

// Collector handles metrics collection for a logger.
type Collector struct {
	// Message counts by level
	messagesByLevel  sync.Map // map[types.Level]*atomic.Uint64
	messagesFiltered atomic.Uint64

	// Worker buffering
	messagesBuffered atomic.Uint64
	messagesReplayed atomic.Uint64
	scratchFiles     atomic.Uint64

	// Stream writes
	bytesWritten   atomic.Uint64
	writeCount     atomic.Uint64
	totalWriteTime atomic.Int64 // nanoseconds
	maxWriteTime   atomic.Int64 // nanoseconds

	// Error metrics
	errorCount     atomic.Uint64
	errorsBySource sync.Map // map[string]*atomic.Uint64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Metrics contains runtime metrics for a logger.
type Metrics struct {
	// Message counts by level
	MessagesLogged   map[types.Level]uint64 `json:"messages_logged"`
	MessagesFiltered uint64                 `json:"messages_filtered"`

	// Worker buffering
	MessagesBuffered uint64 `json:"messages_buffered"`
	MessagesReplayed uint64 `json:"messages_replayed"`
	ScratchFiles     uint64 `json:"scratch_files"`

	// Stream writes
	BytesWritten     uint64        `json:"bytes_written"`
	WriteCount       uint64        `json:"write_count"`
	AverageWriteTime time.Duration `json:"average_write_time"`
	MaxWriteTime     time.Duration `json:"max_write_time"`

	// Error metrics
	ErrorCount     uint64            `json:"error_count"`
	ErrorsBySource map[string]uint64 `json:"errors_by_source"`

	// Stream metrics
	StreamCount int             `json:"stream_count"`
	Streams     []StreamMetrics `json:"streams"`
}

// StreamMetrics contains metrics for a single stream.
type StreamMetrics struct {
	Name         string    `json:"name"`
	Interactive  bool      `json:"interactive"`
	Refs         int       `json:"refs"`
	WriteCount   uint64    `json:"write_count"`
	BytesWritten uint64    `json:"bytes_written"`
	Errors       uint64    `json:"errors"`
	LastWrite    time.Time `json:"last_write"`
}

// GetMetrics returns current metrics snapshot.
func (c *Collector) GetMetrics(streams []StreamMetrics) Metrics {
	metrics := Metrics{
		MessagesLogged:   make(map[types.Level]uint64),
		MessagesFiltered: c.messagesFiltered.Load(),
		MessagesBuffered: c.messagesBuffered.Load(),
		MessagesReplayed: c.messagesReplayed.Load(),
		ScratchFiles:     c.scratchFiles.Load(),
		BytesWritten:     c.bytesWritten.Load(),
		WriteCount:       c.writeCount.Load(),
		ErrorCount:       c.errorCount.Load(),
		ErrorsBySource:   make(map[string]uint64),
		StreamCount:      len(streams),
		Streams:          streams,
	}

	// Copy message counts by level
	c.messagesByLevel.Range(func(key, value interface{}) bool {
		if count := value.(*atomic.Uint64).Load(); count > 0 {
			metrics.MessagesLogged[key.(types.Level)] = count
		}
		return true
	})

	// Copy error counts by source
	c.errorsBySource.Range(func(key, value interface{}) bool {
		if count := value.(*atomic.Uint64).Load(); count > 0 {
			metrics.ErrorsBySource[key.(string)] = count
		}
		return true
	})

	if metrics.WriteCount > 0 {
		metrics.AverageWriteTime = time.Duration(c.totalWriteTime.Load()) / time.Duration(metrics.WriteCount)
	}
	metrics.MaxWriteTime = time.Duration(c.maxWriteTime.Load())

	return metrics
}

// ResetMetrics resets all metrics counters.
func (c *Collector) ResetMetrics() {
	c.messagesByLevel.Range(func(_, value interface{}) bool {
		value.(*atomic.Uint64).Store(0)
		return true
	})
	c.errorsBySource.Range(func(_, value interface{}) bool {
		value.(*atomic.Uint64).Store(0)
		return true
	})

	c.messagesFiltered.Store(0)
	c.messagesBuffered.Store(0)
	c.messagesReplayed.Store(0)
	c.scratchFiles.Store(0)
	c.bytesWritten.Store(0)
	c.writeCount.Store(0)
	c.totalWriteTime.Store(0)
	c.maxWriteTime.Store(0)
	c.errorCount.Store(0)
}

// TrackMessageLogged increments the message counter for a level.
func (c *Collector) TrackMessageLogged(level types.Level) {
	val, _ := c.messagesByLevel.LoadOrStore(level, &atomic.Uint64{})
	val.(*atomic.Uint64).Add(1)
}

// TrackFiltered counts a message rejected by the level or module filter.
func (c *Collector) TrackFiltered() {
	c.messagesFiltered.Add(1)
}

// TrackBuffered counts a message captured in a worker scratch file.
func (c *Collector) TrackBuffered() {
	c.messagesBuffered.Add(1)
}

// TrackReplayed counts a buffered message written to the real streams.
func (c *Collector) TrackReplayed() {
	c.messagesReplayed.Add(1)
}

// TrackScratchFile counts a scratch file creation.
func (c *Collector) TrackScratchFile() {
	c.scratchFiles.Add(1)
}

// TrackWrite records write metrics.
func (c *Collector) TrackWrite(bytes int, duration time.Duration) {
	if bytes > 0 {
		c.bytesWritten.Add(uint64(bytes))
	}
	c.writeCount.Add(1)
	c.totalWriteTime.Add(int64(duration))

	// Update max write time
	for {
		oldMax := c.maxWriteTime.Load()
		if int64(duration) <= oldMax {
			break
		}
		if c.maxWriteTime.CompareAndSwap(oldMax, int64(duration)) {
			break
		}
	}
}

// TrackError increments the error counter and tracks by source.
func (c *Collector) TrackError(source string) {
	c.errorCount.Add(1)

	val, _ := c.errorsBySource.LoadOrStore(source, &atomic.Uint64{})
	val.(*atomic.Uint64).Add(1)
}

// GetMessageCount returns the number of messages logged at a specific level.
func (c *Collector) GetMessageCount(level types.Level) uint64 {
	if val, ok := c.messagesByLevel.Load(level); ok {
		return val.(*atomic.Uint64).Load()
	}
	return 0
}

// GetErrorCount returns the total error count.
func (c *Collector) GetErrorCount() uint64 {
	return c.errorCount.Load()
}

// GetErrorCountBySource returns the error count for a specific source.
func (c *Collector) GetErrorCountBySource(source string) uint64 {
	if val, ok := c.errorsBySource.Load(source); ok {
		return val.(*atomic.Uint64).Load()
	}
	return 0
}
