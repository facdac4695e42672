package backends

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/wayneeseguin/lumen/pkg/types"
)

// WriterStream adapts an io.Writer into a Stream. Writes are serialized.
type WriterStream struct {
	mu          sync.Mutex
	name        string
	w           io.Writer
	interactive bool
	persistent  bool // never closed (stdout)
	closed      bool
	counter     counters
}

var _ Stream = (*WriterStream)(nil)

// NewWriterStream wraps w under the given identity. The stream is not
// interactive unless SetInteractive is called.
func NewWriterStream(name string, w io.Writer) *WriterStream {
	return &WriterStream{name: name, w: w}
}

var (
	stdoutOnce   sync.Once
	stdoutStream *WriterStream
)

// Stdout returns the process standard output stream. It is interactive
// when stdout is a terminal, NO_COLOR is unset and TERM is not "dumb".
// Closing it has no effect.
func Stdout() *WriterStream {
	stdoutOnce.Do(func() {
		stdoutStream = &WriterStream{
			name:        StdoutName,
			w:           os.Stdout,
			interactive: IsTerminal(os.Stdout),
			persistent:  true,
		}
	})
	return stdoutStream
}

// IsTerminal reports whether f is a terminal that accepts color.
func IsTerminal(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 - fd fits in int
}

// SetInteractive overrides terminal detection.
func (ws *WriterStream) SetInteractive(interactive bool) *WriterStream {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.interactive = interactive
	return ws
}

// Write writes p to the wrapped writer.
func (ws *WriterStream) Write(p []byte) (int, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.closed {
		ws.counter.record(0, ErrStreamClosed)
		return 0, errors.Wrap(ErrStreamClosed, ws.name)
	}
	n, err := ws.w.Write(p)
	ws.counter.record(n, err)
	if err != nil {
		return n, errors.Wrapf(err, "write %s", ws.name)
	}
	return n, nil
}

// Name returns the stream identity.
func (ws *WriterStream) Name() string {
	return ws.name
}

// Interactive reports whether colorized output is wanted.
func (ws *WriterStream) Interactive() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.interactive
}

// Persistent reports whether Close leaves the stream open.
func (ws *WriterStream) Persistent() bool {
	return ws.persistent
}

// Stats returns write statistics.
func (ws *WriterStream) Stats() types.Stats {
	return ws.counter.snapshot()
}

// Sync flushes the wrapped writer when it supports it.
func (ws *WriterStream) Sync() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	switch w := ws.w.(type) {
	case *os.File:
		// syncing a terminal or pipe fails with EINVAL, ignore it
		_ = w.Sync()
	case interface{ Flush() error }:
		return w.Flush()
	case interface{ Sync() error }:
		return w.Sync()
	}
	return nil
}

// Close closes the wrapped writer if it is an io.Closer. Standard output
// and standard error are never closed.
func (ws *WriterStream) Close() error {
	if ws.persistent {
		return nil
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.closed {
		return nil
	}
	ws.closed = true

	if ws.w == os.Stdout || ws.w == os.Stderr {
		return nil
	}
	if c, ok := ws.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
