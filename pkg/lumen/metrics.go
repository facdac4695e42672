package lumen

import (
	"github.com/wayneeseguin/lumen/internal/metrics"
	"github.com/wayneeseguin/lumen/pkg/backends"
)

// Metrics contains runtime metrics for a logger.
type Metrics = metrics.Metrics

// StreamMetrics contains metrics for a single stream.
type StreamMetrics = metrics.StreamMetrics

// Metrics returns a snapshot of the logger's counters.
func (l *Logger) Metrics() Metrics {
	streams := l.snapshot()
	sm := make([]StreamMetrics, 0, len(streams))
	for _, s := range streams {
		m := StreamMetrics{
			Name:        s.Name(),
			Interactive: s.Interactive(),
			Refs:        s.Refs(),
		}
		if sp, ok := s.Unwrap().(backends.StatsProvider); ok {
			stats := sp.Stats()
			m.WriteCount = stats.WriteCount
			m.BytesWritten = stats.BytesWritten
			m.Errors = stats.ErrorCount
			m.LastWrite = stats.LastWrite
		}
		sm = append(sm, m)
	}
	return l.metrics.GetMetrics(sm)
}

// ResetMetrics zeroes the logger's counters.
func (l *Logger) ResetMetrics() {
	l.metrics.ResetMetrics()
}
