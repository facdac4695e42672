package backends

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/wayneeseguin/lumen/pkg/types"
)

// DefaultBufferSize for file operations
const DefaultBufferSize = 32 * 1024

// ErrStreamClosed is returned when writing to a closed stream.
var ErrStreamClosed = errors.New("stream closed")

// OpenMode selects what happens to an existing file when it is opened.
type OpenMode int

const (
	// ModeTruncate starts the file fresh.
	ModeTruncate OpenMode = iota
	// ModeAppend keeps existing content and appends to it.
	ModeAppend
)

// String returns the mode name.
func (m OpenMode) String() string {
	if m == ModeAppend {
		return "append"
	}
	return "truncate"
}

// FileStream writes log lines to a file. Each write holds an exclusive
// advisory lock on the file so processes sharing the file never interleave
// partial lines.
type FileStream struct {
	mu      sync.Mutex
	file    *os.File
	writer  *bufio.Writer
	lock    *flock.Flock
	path    string
	mode    OpenMode
	closed  bool
	counter counters
}

var _ Stream = (*FileStream)(nil)

// AbsPath returns the identity used for a file stream opened at path.
func AbsPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolve path %q", path)
	}
	return filepath.Clean(abs), nil
}

// OpenFile opens the file at path for logging, creating parent directories
// as needed.
func OpenFile(path string, mode OpenMode) (*FileStream, error) {
	abs, err := AbsPath(path)
	if err != nil {
		return nil, err
	}

	// #nosec G301 - log directories need to be accessible by other processes
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return nil, errors.Wrap(err, "create directory")
	}

	flags := os.O_CREATE | os.O_WRONLY
	if mode == ModeAppend {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(abs, flags, 0644) // #nosec G302 - log files need to be readable
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}

	return &FileStream{
		file:   file,
		writer: bufio.NewWriterSize(file, DefaultBufferSize),
		lock:   flock.New(abs),
		path:   abs,
		mode:   mode,
	}, nil
}

// Write writes p under the file lock and flushes it.
func (fs *FileStream) Write(p []byte) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		fs.counter.record(0, ErrStreamClosed)
		return 0, errors.Wrap(ErrStreamClosed, fs.path)
	}

	if err := fs.lock.Lock(); err != nil {
		fs.counter.record(0, err)
		return 0, errors.Wrap(err, "acquire lock")
	}
	defer func() {
		_ = fs.lock.Unlock() // Best effort unlock
	}()

	n, err := fs.writer.Write(p)
	if err == nil {
		err = fs.writer.Flush()
	}
	fs.counter.record(n, err)
	if err != nil {
		return n, errors.Wrapf(err, "write %s", fs.path)
	}
	return n, nil
}

// Name returns the absolute path of the file.
func (fs *FileStream) Name() string {
	return fs.path
}

// Path returns the file path
func (fs *FileStream) Path() string {
	return fs.path
}

// Mode returns the mode the file was opened with.
func (fs *FileStream) Mode() OpenMode {
	return fs.mode
}

// Interactive is always false for files.
func (fs *FileStream) Interactive() bool {
	return false
}

// Stats returns write statistics.
func (fs *FileStream) Stats() types.Stats {
	return fs.counter.snapshot()
}

// Sync syncs the file to disk
func (fs *FileStream) Sync() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		return nil
	}
	if err := fs.writer.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}
	return fs.file.Sync()
}

// Close flushes and closes the file. Closing twice is a no-op.
func (fs *FileStream) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		return nil
	}
	fs.closed = true

	var errs []error
	if err := fs.writer.Flush(); err != nil {
		errs = append(errs, errors.Wrap(err, "flush"))
	}
	if err := fs.lock.Close(); err != nil {
		errs = append(errs, errors.Wrap(err, "unlock"))
	}
	if err := fs.file.Close(); err != nil {
		errs = append(errs, errors.Wrap(err, "close file"))
	}

	if len(errs) > 0 {
		return errors.Errorf("close errors: %v", errs)
	}
	return nil
}
