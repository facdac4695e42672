package lumen

import (
	"io"

	"github.com/pkg/errors"

	"github.com/wayneeseguin/lumen/pkg/backends"
)

// acquire returns a counted reference to s. The same stream value used by
// several loggers is shared. A different stream whose identity is already
// open in the environment is rejected with ErrStreamConflict.
func (e *Environment) acquire(s backends.Stream) (*backends.Shared, error) {
	e.streamsMu.Lock()
	defer e.streamsMu.Unlock()

	if sh, ok := e.streams[s.Name()]; ok {
		if !sh.Holds(s) {
			return nil, errors.Wrapf(ErrStreamConflict, "%q", s.Name())
		}
		if sh.TryRetain() {
			return sh, nil
		}
	}
	sh := backends.NewShared(s, e.forget).Retain()
	e.streams[s.Name()] = sh
	return sh, nil
}

// acquirePath returns a counted reference to the file at path, opening it
// unless it is already open.
func (e *Environment) acquirePath(path string, mode backends.OpenMode) (*backends.Shared, error) {
	abs, err := backends.AbsPath(path)
	if err != nil {
		return nil, err
	}

	e.streamsMu.Lock()
	defer e.streamsMu.Unlock()

	if sh, ok := e.streams[abs]; ok {
		if _, isFile := sh.Unwrap().(*backends.FileStream); !isFile {
			return nil, errors.Wrapf(ErrStreamConflict, "%q", abs)
		}
		if sh.TryRetain() {
			return sh, nil
		}
	}
	fs, err := backends.OpenFile(abs, mode)
	if err != nil {
		return nil, err
	}
	sh := backends.NewShared(fs, e.forget).Retain()
	e.streams[abs] = sh
	return sh, nil
}

// forget removes a fully released stream from the open stream table.
func (e *Environment) forget(sh *backends.Shared) {
	e.streamsMu.Lock()
	defer e.streamsMu.Unlock()
	if cur, ok := e.streams[sh.Name()]; ok && cur == sh {
		delete(e.streams, sh.Name())
	}
}

// streamKey resolves a Remove argument to a stream identity. Relative file
// paths are accepted.
func streamKey(key string, has func(string) bool) (string, bool) {
	if has(key) {
		return key, true
	}
	if abs, err := backends.AbsPath(key); err == nil && has(abs) {
		return abs, true
	}
	return "", false
}

// AddAll registers s with every live logger and with every logger created
// later.
func (e *Environment) AddAll(s backends.Stream) error {
	if s == nil {
		return errors.New("stream cannot be nil")
	}
	sh, err := e.acquire(s)
	if err != nil {
		return err
	}
	return e.addAll(sh)
}

// AddAllPath is AddAll for a file, truncating it.
func (e *Environment) AddAllPath(path string) error {
	sh, err := e.acquirePath(path, backends.ModeTruncate)
	if err != nil {
		return err
	}
	return e.addAll(sh)
}

// AddAllAppend is AddAll for a file, appending to it.
func (e *Environment) AddAllAppend(path string) error {
	sh, err := e.acquirePath(path, backends.ModeAppend)
	if err != nil {
		return err
	}
	return e.addAll(sh)
}

// addAll takes ownership of one reference to sh.
func (e *Environment) addAll(sh *backends.Shared) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.streamsMu.Lock()
	for _, cur := range e.aggregated {
		if cur.Name() == sh.Name() {
			e.streamsMu.Unlock()
			return sh.Release()
		}
	}
	e.aggregated = append(e.aggregated, sh)
	e.streamsMu.Unlock()

	for _, l := range e.liveLoggersLocked() {
		if sh.TryRetain() {
			l.attach(sh)
		}
	}
	return nil
}

// RemoveAll removes the stream identified by key from the AddAll table and
// from every live logger.
func (e *Environment) RemoveAll(key string) error {
	e.mu.Lock()
	loggers := e.liveLoggersLocked()

	e.streamsMu.Lock()
	var removed *backends.Shared
	name, ok := streamKey(key, func(k string) bool {
		for _, s := range e.aggregated {
			if s.Name() == k {
				return true
			}
		}
		return false
	})
	if ok {
		kept := e.aggregated[:0]
		for _, s := range e.aggregated {
			if s.Name() == name {
				removed = s
				continue
			}
			kept = append(kept, s)
		}
		e.aggregated = kept
	}
	e.streamsMu.Unlock()
	e.mu.Unlock()

	found := removed != nil
	var errs []error
	if removed != nil {
		if err := removed.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, l := range loggers {
		err := l.Remove(key)
		switch {
		case err == nil:
			found = true
		case !errors.Is(err, ErrStreamNotFound):
			errs = append(errs, err)
		}
	}

	if !found {
		return errors.Wrapf(ErrStreamNotFound, "%q", key)
	}
	if len(errs) > 0 {
		return errors.Errorf("remove errors: %v", errs)
	}
	return nil
}

// Aggregated returns the identities of the streams registered with AddAll.
func (e *Environment) Aggregated() []string {
	e.streamsMu.Lock()
	defer e.streamsMu.Unlock()
	names := make([]string, 0, len(e.aggregated))
	for _, s := range e.aggregated {
		names = append(names, s.Name())
	}
	return names
}

// inherited returns new references to the AddAll streams.
func (e *Environment) inherited() []*backends.Shared {
	e.streamsMu.Lock()
	defer e.streamsMu.Unlock()
	out := make([]*backends.Shared, 0, len(e.aggregated))
	for _, s := range e.aggregated {
		if s.TryRetain() {
			out = append(out, s)
		}
	}
	return out
}

// attach adds sh to the stream set, taking ownership of one reference.
// A stream that is already present keeps its position and the extra
// reference is dropped.
func (l *Logger) attach(sh *backends.Shared) {
	l.mu.Lock()
	if l.IsClosed() {
		l.mu.Unlock()
		_ = sh.Release()
		return
	}
	for _, cur := range l.streams {
		if cur.Name() == sh.Name() {
			l.mu.Unlock()
			_ = sh.Release()
			return
		}
	}
	l.streams = append(l.streams, sh)
	l.mu.Unlock()
}

// Add adds s to the logger's streams. A stream with the same identity as
// one already open in the environment is shared.
func (l *Logger) Add(s backends.Stream) error {
	if l.IsClosed() {
		return errors.Wrapf(ErrLoggerClosed, "logger %q", l.name)
	}
	if s == nil {
		return errors.New("stream cannot be nil")
	}
	sh, err := l.env.acquire(s)
	if err != nil {
		return err
	}
	l.attach(sh)
	return nil
}

// AddPath adds the file at path, truncating it unless it is already open.
func (l *Logger) AddPath(path string) error {
	return l.addPath(path, backends.ModeTruncate)
}

// AddAppend adds the file at path, appending to it.
func (l *Logger) AddAppend(path string) error {
	return l.addPath(path, backends.ModeAppend)
}

func (l *Logger) addPath(path string, mode backends.OpenMode) error {
	if l.IsClosed() {
		return errors.Wrapf(ErrLoggerClosed, "logger %q", l.name)
	}
	sh, err := l.env.acquirePath(path, mode)
	if err != nil {
		return err
	}
	l.attach(sh)
	return nil
}

// Remove removes the stream identified by key: "<stdout>", a file path or
// the name of a writer stream.
func (l *Logger) Remove(key string) error {
	l.mu.Lock()
	name, ok := streamKey(key, func(k string) bool {
		for _, s := range l.streams {
			if s.Name() == k {
				return true
			}
		}
		return false
	})
	if !ok {
		l.mu.Unlock()
		return errors.Wrapf(ErrStreamNotFound, "%q in logger %q", key, l.name)
	}

	var removed *backends.Shared
	kept := make([]*backends.Shared, 0, len(l.streams))
	for _, s := range l.streams {
		if s.Name() == name {
			removed = s
			continue
		}
		kept = append(kept, s)
	}
	l.streams = kept
	l.mu.Unlock()

	return removed.Release()
}

// Clear removes every stream. Logging calls fail with ErrNoStreams until a
// stream is added again.
func (l *Logger) Clear() error {
	l.mu.Lock()
	streams := l.streams
	l.streams = nil
	l.mu.Unlock()

	var errs []error
	for _, s := range streams {
		if err := s.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Errorf("clear errors: %v", errs)
	}
	return nil
}

// Streams returns the identities of the logger's streams in write order.
func (l *Logger) Streams() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.streams))
	for _, s := range l.streams {
		names = append(names, s.Name())
	}
	return names
}

func (l *Logger) snapshot() []*backends.Shared {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*backends.Shared(nil), l.streams...)
}

// Stream is an output destination. See package backends.
type Stream = backends.Stream

// Stdout returns the standard output stream.
func Stdout() Stream {
	return backends.Stdout()
}

// NewWriterStream wraps w as a stream identified by name.
func NewWriterStream(name string, w io.Writer) *backends.WriterStream {
	return backends.NewWriterStream(name, w)
}
