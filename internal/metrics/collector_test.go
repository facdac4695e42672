package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/wayneeseguin/lumen/pkg/types"
)

func TestNewCollector(t *testing.T) {
	c := NewCollector()
	if c == nil {
		t.Fatal("NewCollector() returned nil")
	}

	// Verify initial state
	if c.GetMessageCount(types.LevelInfo) != 0 {
		t.Error("Expected initial message count to be 0")
	}
	if c.GetErrorCount() != 0 {
		t.Error("Expected initial error count to be 0")
	}
}

func TestTrackMessageLogged(t *testing.T) {
	c := NewCollector()

	tests := []struct {
		name  string
		level types.Level
		count int
	}{
		{"Single debug message", types.LevelDebug, 1},
		{"Multiple info messages", types.LevelInfo, 5},
		{"Many error messages", types.LevelError, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < tt.count; i++ {
				c.TrackMessageLogged(tt.level)
			}

			if got := c.GetMessageCount(tt.level); got != uint64(tt.count) {
				t.Errorf("GetMessageCount(%s) = %d, want %d", tt.level, got, tt.count)
			}
		})
	}

	metrics := c.GetMetrics(nil)
	if len(metrics.MessagesLogged) != len(tests) {
		t.Errorf("MessagesLogged has %d levels, want %d", len(metrics.MessagesLogged), len(tests))
	}
}

func TestTrackBuffering(t *testing.T) {
	c := NewCollector()

	c.TrackScratchFile()
	for i := 0; i < 7; i++ {
		c.TrackBuffered()
	}
	for i := 0; i < 4; i++ {
		c.TrackReplayed()
	}
	c.TrackFiltered()
	c.TrackFiltered()

	metrics := c.GetMetrics(nil)
	if metrics.ScratchFiles != 1 {
		t.Errorf("ScratchFiles = %d, want 1", metrics.ScratchFiles)
	}
	if metrics.MessagesBuffered != 7 {
		t.Errorf("MessagesBuffered = %d, want 7", metrics.MessagesBuffered)
	}
	if metrics.MessagesReplayed != 4 {
		t.Errorf("MessagesReplayed = %d, want 4", metrics.MessagesReplayed)
	}
	if metrics.MessagesFiltered != 2 {
		t.Errorf("MessagesFiltered = %d, want 2", metrics.MessagesFiltered)
	}
}

func TestTrackWrite(t *testing.T) {
	c := NewCollector()

	c.TrackWrite(100, 10*time.Millisecond)
	c.TrackWrite(50, 30*time.Millisecond)
	c.TrackWrite(-1, 20*time.Millisecond)

	metrics := c.GetMetrics(nil)
	if metrics.BytesWritten != 150 {
		t.Errorf("BytesWritten = %d, want 150", metrics.BytesWritten)
	}
	if metrics.WriteCount != 3 {
		t.Errorf("WriteCount = %d, want 3", metrics.WriteCount)
	}
	if metrics.AverageWriteTime != 20*time.Millisecond {
		t.Errorf("AverageWriteTime = %v, want 20ms", metrics.AverageWriteTime)
	}
	if metrics.MaxWriteTime != 30*time.Millisecond {
		t.Errorf("MaxWriteTime = %v, want 30ms", metrics.MaxWriteTime)
	}
}

func TestTrackError(t *testing.T) {
	c := NewCollector()

	sources := map[string]int{
		"write":   3,
		"scratch": 2,
		"format":  1,
	}
	for source, n := range sources {
		for i := 0; i < n; i++ {
			c.TrackError(source)
		}
	}

	if got := c.GetErrorCount(); got != 6 {
		t.Errorf("GetErrorCount() = %d, want 6", got)
	}
	for source, n := range sources {
		if got := c.GetErrorCountBySource(source); got != uint64(n) {
			t.Errorf("GetErrorCountBySource(%q) = %d, want %d", source, got, n)
		}
	}
	if got := c.GetErrorCountBySource("missing"); got != 0 {
		t.Errorf("GetErrorCountBySource(missing) = %d, want 0", got)
	}

	metrics := c.GetMetrics(nil)
	if len(metrics.ErrorsBySource) != len(sources) {
		t.Errorf("ErrorsBySource has %d entries, want %d", len(metrics.ErrorsBySource), len(sources))
	}
}

func TestGetMetricsStreams(t *testing.T) {
	c := NewCollector()
	streams := []StreamMetrics{
		{Name: "<stdout>", Interactive: true, Refs: 2},
		{Name: "/tmp/app.log", Refs: 1, WriteCount: 3},
	}

	metrics := c.GetMetrics(streams)
	if metrics.StreamCount != 2 {
		t.Errorf("StreamCount = %d, want 2", metrics.StreamCount)
	}
	if metrics.Streams[1].WriteCount != 3 {
		t.Errorf("Streams[1].WriteCount = %d, want 3", metrics.Streams[1].WriteCount)
	}
}

func TestResetMetrics(t *testing.T) {
	c := NewCollector()

	c.TrackMessageLogged(types.LevelInfo)
	c.TrackFiltered()
	c.TrackBuffered()
	c.TrackReplayed()
	c.TrackScratchFile()
	c.TrackWrite(10, time.Millisecond)
	c.TrackError("write")

	c.ResetMetrics()

	metrics := c.GetMetrics(nil)
	if len(metrics.MessagesLogged) != 0 {
		t.Errorf("MessagesLogged = %v, want empty", metrics.MessagesLogged)
	}
	if len(metrics.ErrorsBySource) != 0 {
		t.Errorf("ErrorsBySource = %v, want empty", metrics.ErrorsBySource)
	}
	if metrics.MessagesFiltered+metrics.MessagesBuffered+metrics.MessagesReplayed+metrics.ScratchFiles != 0 {
		t.Error("buffering counters were not reset")
	}
	if metrics.BytesWritten != 0 || metrics.WriteCount != 0 || metrics.MaxWriteTime != 0 {
		t.Error("write counters were not reset")
	}
	if metrics.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0", metrics.ErrorCount)
	}
}

func TestConcurrentTracking(t *testing.T) {
	c := NewCollector()

	const goroutines, iterations = 10, 1000
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				c.TrackMessageLogged(types.LevelInfo)
				c.TrackWrite(1, time.Microsecond)
				c.TrackError("write")
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * iterations)
	if got := c.GetMessageCount(types.LevelInfo); got != want {
		t.Errorf("GetMessageCount = %d, want %d", got, want)
	}
	if got := c.GetMetrics(nil).BytesWritten; got != want {
		t.Errorf("BytesWritten = %d, want %d", got, want)
	}
	if got := c.GetErrorCountBySource("write"); got != want {
		t.Errorf("GetErrorCountBySource = %d, want %d", got, want)
	}
}
