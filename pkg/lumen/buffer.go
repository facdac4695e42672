package lumen

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/wayneeseguin/lumen/internal/buffer"
	"github.com/wayneeseguin/lumen/pkg/backends"
	"github.com/wayneeseguin/lumen/pkg/types"
)

// MaxOpenScratchFiles bounds the scratch files a logger keeps open at once.
// Goroutines started without Environment.Go have no exit hook, so the least
// recently used files beyond this bound give up their descriptor until
// their worker logs again.
const MaxOpenScratchFiles = 16

// newOpenScratches tracks the scratch files holding a descriptor. Eviction
// and removal detach the file; its records stay on disk.
func (l *Logger) newOpenScratches() *lru.Cache[*buffer.Scratch, struct{}] {
	cache, err := lru.NewWithEvict(MaxOpenScratchFiles, func(s *buffer.Scratch, _ struct{}) {
		if err := s.Detach(); err != nil {
			l.reportError(LogError{
				Operation:   "buffer",
				Destination: s.Path(),
				Message:     "cannot release scratch file of worker " + s.Owner(),
				Err:         err,
				Level:       ErrorLevelMedium,
			})
		}
	})
	if err != nil {
		// only a non-positive size fails
		panic(err)
	}
	return cache
}

// bufferRecord appends rec to the scratch file of worker. It returns false
// when the record could not be buffered and must be written directly.
func (l *Logger) bufferRecord(worker string, rec types.Record) bool {
	// a scratch file sealed by a concurrent flush is replaced once
	for attempt := 0; attempt < 2; attempt++ {
		s, err := l.scratchFor(worker)
		if err != nil {
			if !errors.Is(err, ErrLoggerClosed) {
				l.reportError(LogError{
					Operation: "buffer",
					Message:   "cannot create scratch file, writing directly",
					Err:       err,
					Level:     ErrorLevelMedium,
				})
			}
			return false
		}

		err = s.Append(rec)
		if err == nil {
			l.openScratches.Add(s, struct{}{})
			l.metrics.TrackBuffered()
			return true
		}
		if !errors.Is(err, buffer.ErrClosed) {
			l.reportError(LogError{
				Operation:   "buffer",
				Destination: s.Path(),
				Message:     "cannot append to scratch file, writing directly",
				Err:         err,
				Level:       ErrorLevelMedium,
			})
			return false
		}
		l.dropScratch(worker, s)
	}
	return false
}

// scratchFor returns the scratch file of worker, creating it on first use.
func (l *Logger) scratchFor(worker string) (*buffer.Scratch, error) {
	l.scratchMu.Lock()
	defer l.scratchMu.Unlock()

	if l.IsClosed() {
		return nil, ErrLoggerClosed
	}
	if s, ok := l.scratches[worker]; ok {
		return s, nil
	}

	l.mu.RLock()
	dir := l.tempDir
	l.mu.RUnlock()

	s, err := buffer.NewScratch(dir, worker)
	if err != nil {
		return nil, err
	}
	l.scratches[worker] = s
	l.scratchOrder = append(l.scratchOrder, s)
	l.metrics.TrackScratchFile()
	return s, nil
}

func (l *Logger) dropScratch(worker string, s *buffer.Scratch) {
	l.scratchMu.Lock()
	defer l.scratchMu.Unlock()
	if cur, ok := l.scratches[worker]; ok && cur == s {
		delete(l.scratches, worker)
	}
}

// releaseWorker closes the descriptor of the scratch file of a worker that
// has finished. Its records are replayed by the next Flush or Close.
func (l *Logger) releaseWorker(worker string) {
	l.scratchMu.Lock()
	s, ok := l.scratches[worker]
	l.scratchMu.Unlock()
	if ok {
		l.openScratches.Remove(s)
	}
}

// Pending returns the number of scratch files awaiting replay.
func (l *Logger) Pending() int {
	l.scratchMu.Lock()
	defer l.scratchMu.Unlock()
	return len(l.scratchOrder)
}

// Flush replays the output buffered by workers so far into the streams
// and syncs the streams. Workers that keep logging start new scratch files.
func (l *Logger) Flush() error {
	if l.IsClosed() {
		return nil
	}
	if err := l.flush(); err != nil {
		return err
	}

	for _, s := range l.snapshot() {
		if err := s.Sync(); err != nil {
			l.reportError(LogError{
				Operation:   "sync",
				Destination: s.Name(),
				Message:     "sync failed",
				Err:         errors.WithStack(err),
				Level:       ErrorLevelLow,
			})
		}
	}
	return nil
}

// flush replays every pending scratch file, in creation order, under the
// environment flush lock. Each scratch file is deleted after its replay.
func (l *Logger) flush() error {
	l.scratchMu.Lock()
	pending := l.scratchOrder
	if len(pending) == 0 {
		l.scratchMu.Unlock()
		return nil
	}
	streams := l.snapshot()
	if len(streams) == 0 {
		l.scratchMu.Unlock()
		return errors.Wrapf(ErrNoStreams, "logger %q", l.name)
	}
	l.scratchOrder = nil
	l.scratches = make(map[string]*buffer.Scratch)
	l.scratchMu.Unlock()

	for _, s := range pending {
		s.Seal()
		l.openScratches.Remove(s)
	}

	unlock := l.env.lockFlush()
	defer unlock()

	for _, s := range pending {
		l.replay(s, streams)
	}
	return nil
}

func (l *Logger) replay(s *buffer.Scratch, streams []*backends.Shared) {
	err := s.Replay(func(rec types.Record) error {
		l.dispatch(streams, rec)
		l.metrics.TrackReplayed()
		return nil
	})
	if err != nil {
		l.reportError(LogError{
			Operation:   "replay",
			Destination: s.Path(),
			Message:     "replay of records buffered by worker " + s.Owner() + " failed",
			Err:         err,
			Level:       ErrorLevelHigh,
		})
	}
	if err := s.Close(); err != nil {
		l.reportError(LogError{
			Operation:   "replay",
			Destination: s.Path(),
			Message:     "cannot remove scratch file",
			Err:         err,
			Level:       ErrorLevelLow,
		})
	}
}

// discardScratches deletes scratch files that could not be replayed.
func (l *Logger) discardScratches() {
	l.scratchMu.Lock()
	pending := l.scratchOrder
	l.scratchOrder = nil
	l.scratches = make(map[string]*buffer.Scratch)
	l.scratchMu.Unlock()

	for _, s := range pending {
		l.openScratches.Remove(s)
		_ = s.Close()
	}
}
