package buffer

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wayneeseguin/lumen/pkg/types"
)

// ErrClosed is returned when operations are attempted on a closed Scratch
var ErrClosed = errors.New("scratch file is closed")

// Scratch is a private, exclusively owned temporary file that captures the
// records one worker context produces. Records are stored as JSON lines so
// they can be re-rendered for each destination when replayed.
//
// The file descriptor is only held while the owner is logging: Detach
// closes it and keeps the records, the next Append reopens the file.
type Scratch struct {
	mu      sync.Mutex
	file    *os.File // nil while detached
	writer  *bufio.Writer
	path    string
	owner   string
	created time.Time
	entries int
	bytes   int
	sealed  bool // no further appends
	closed  bool
}

// NewScratch creates a scratch file with a random name inside dir.
// owner is the worker context the file belongs to.
func NewScratch(dir, owner string) (*Scratch, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	name := "lumen-" + sanitize(owner) + "-" + uuid.NewString() + ".jsonl"
	path := filepath.Join(dir, name)

	// #nosec G304 - path is built from the configured temp dir and a random name
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "create scratch file in %s", dir)
	}

	return &Scratch{
		file:    file,
		writer:  bufio.NewWriter(file),
		path:    path,
		owner:   owner,
		created: time.Now(),
	}, nil
}

// attach reopens a detached file for appending. s.mu must be held.
func (s *Scratch) attach() error {
	if s.file != nil {
		return nil
	}
	// #nosec G304 - path was created by NewScratch
	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return errors.Wrap(err, "reopen scratch file")
	}
	s.file = file
	s.writer = bufio.NewWriter(file)
	return nil
}

// detach flushes and closes the descriptor. s.mu must be held.
func (s *Scratch) detach() error {
	if s.file == nil {
		return nil
	}
	flushErr := s.writer.Flush()
	closeErr := s.file.Close()
	s.file = nil
	s.writer = nil
	if flushErr != nil {
		return errors.Wrap(flushErr, "flush scratch file")
	}
	return errors.Wrap(closeErr, "close scratch file")
}

// Append stores a record at the end of the file.
func (s *Scratch) Append(rec types.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encode record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.sealed {
		return ErrClosed
	}
	if err := s.attach(); err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return errors.Wrap(err, "write scratch record")
	}
	if err := s.writer.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "write scratch record")
	}
	s.entries++
	s.bytes += len(data) + 1
	return nil
}

// Detach writes out pending records and releases the file descriptor.
// The records stay in the file; a later Append reopens it.
func (s *Scratch) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.detach()
}

// Attached reports whether the file descriptor is open.
func (s *Scratch) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file != nil
}

// Seal rejects further appends while keeping the stored records available
// to Replay. Appends after Seal return ErrClosed.
func (s *Scratch) Seal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sealed = true
}

// Replay reads every stored record from the start of the file, in the order
// they were appended, and hands each one to fn. It stops at the first error.
// The file is read through its own descriptor.
func (s *Scratch) Replay(fn func(types.Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.writer != nil {
		if err := s.writer.Flush(); err != nil {
			return errors.Wrap(err, "flush scratch file")
		}
	}

	f, err := os.Open(s.path) // #nosec G304 - path was created by NewScratch
	if err != nil {
		return errors.Wrap(err, "open scratch file")
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	for {
		var rec types.Record
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return errors.Wrap(err, "decode scratch record")
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close closes and deletes the file. It is safe to call more than once.
func (s *Scratch) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []string
	if err := s.detach(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return errors.Errorf("close scratch file %s: %s", s.path, strings.Join(errs, "; "))
	}
	return nil
}

// Path returns the location of the scratch file.
func (s *Scratch) Path() string {
	return s.path
}

// Owner returns the worker context name the file was created for.
func (s *Scratch) Owner() string {
	return s.owner
}

// Stats returns current scratch file statistics.
func (s *Scratch) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Entries:  s.entries,
		Bytes:    s.bytes,
		Created:  s.created,
		Attached: s.file != nil,
		Sealed:   s.sealed,
		Closed:   s.closed,
	}
}

// Stats contains statistics about a scratch file.
type Stats struct {
	Entries  int       `json:"entries"`
	Bytes    int       `json:"bytes"`
	Created  time.Time `json:"created"`
	Attached bool      `json:"attached"`
	Sealed   bool      `json:"sealed"`
	Closed   bool      `json:"closed"`
}

func sanitize(owner string) string {
	if owner == "" {
		return "worker"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, owner)
}
