package backends

import (
	"reflect"
	"sync"
)

// Shared is a reference-counted Stream. Holders call Retain when they start
// using the stream and Release when they stop; the underlying stream is
// closed when the last reference is released.
type Shared struct {
	Stream

	mu     sync.Mutex
	refs   int
	closed bool
	onZero func(*Shared)
}

// NewShared wraps s with a reference count of zero. onZero, if not nil, is
// called after the stream has been closed by the final Release.
func NewShared(s Stream, onZero func(*Shared)) *Shared {
	return &Shared{Stream: s, onZero: onZero}
}

// Holds reports whether s wraps exactly the stream value other.
func (s *Shared) Holds(other Stream) bool {
	return SameStream(s.Stream, other)
}

// SameStream reports whether a and b are the same stream value. Streams
// of a non-comparable type are never the same.
func SameStream(a, b Stream) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Retain adds a reference.
func (s *Shared) Retain() *Shared {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs++
	return s
}

// TryRetain adds a reference unless the stream was already closed by a
// final Release.
func (s *Shared) TryRetain() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.refs++
	return true
}

// Release drops a reference, closing the stream when none remain.
// Persistent streams such as stdout stay open.
func (s *Shared) Release() error {
	s.mu.Lock()
	if s.refs > 0 {
		s.refs--
	}
	if s.refs > 0 || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var err error
	if !IsPersistent(s.Stream) {
		err = s.Stream.Close()
	}
	if s.onZero != nil {
		s.onZero(s)
	}
	return err
}

// Refs returns the current reference count.
func (s *Shared) Refs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs
}

// Closed reports whether the final reference was released.
func (s *Shared) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Unwrap returns the underlying stream.
func (s *Shared) Unwrap() Stream {
	return s.Stream
}

// IsPersistent reports whether s must never be closed.
func IsPersistent(s Stream) bool {
	p, ok := s.(interface{ Persistent() bool })
	return ok && p.Persistent()
}
