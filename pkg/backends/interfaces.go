package backends

import (
	"io"

	"github.com/wayneeseguin/lumen/pkg/types"
)

// Stream is an output destination for rendered log lines.
type Stream interface {
	io.Writer

	// Name returns the stream identity. Two streams with the same name are
	// the same destination.
	Name() string

	// Interactive reports whether the stream is attached to a terminal and
	// should receive colorized output.
	Interactive() bool

	// Sync flushes buffered data to the underlying device.
	Sync() error

	// Close releases the stream.
	Close() error
}

// StatsProvider is implemented by streams that track write statistics.
type StatsProvider interface {
	Stats() types.Stats
}

// StdoutName is the identity of the standard output stream.
const StdoutName = "<stdout>"
