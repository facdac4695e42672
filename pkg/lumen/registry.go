package lumen

import (
	"runtime"
	"sort"
	"weak"

	"github.com/wayneeseguin/lumen/pkg/formatters"
)

// DefaultLoggerName is the name used for an empty logger name. Its
// instance field is left out of rendered lines.
const DefaultLoggerName = formatters.DefaultInstanceName

// Logger returns the live logger registered under name, creating it with
// opts if there is none. Options are ignored when the logger already
// exists; use the setters to reconfigure it.
//
// The registry only holds a weak reference: once every caller has dropped
// a logger it is garbage collected and its name becomes free again. Close
// a logger to release its streams deterministically.
func (e *Environment) Logger(name string, opts ...Option) (*Logger, error) {
	if name == "" {
		name = DefaultLoggerName
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if l := e.lookupLocked(name); l != nil {
		return l, nil
	}

	l, err := e.newLogger(name, opts...)
	if err != nil {
		return nil, err
	}
	e.loggers[name] = weak.Make(l)
	runtime.AddCleanup(l, e.prune, name)
	return l, nil
}

// Lookup returns the live logger registered under name.
func (e *Environment) Lookup(name string) (*Logger, bool) {
	if name == "" {
		name = DefaultLoggerName
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	l := e.lookupLocked(name)
	return l, l != nil
}

// Names returns the names of the live loggers, sorted.
func (e *Environment) Names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	loggers := e.liveLoggersLocked()
	names := make([]string, 0, len(loggers))
	for _, l := range loggers {
		names = append(names, l.name)
	}
	sort.Strings(names)
	return names
}

// Std returns the default logger of the environment. Unlike other
// loggers it is kept alive by the environment until Reset.
func (e *Environment) Std() *Logger {
	e.mu.Lock()
	if e.std != nil && !e.std.IsClosed() {
		defer e.mu.Unlock()
		return e.std
	}
	e.mu.Unlock()

	l, err := e.Logger(DefaultLoggerName)
	if err != nil {
		// only options can fail and none were given
		panic(err)
	}

	e.mu.Lock()
	e.std = l
	e.mu.Unlock()
	return l
}

func (e *Environment) lookupLocked(name string) *Logger {
	wp, ok := e.loggers[name]
	if !ok {
		return nil
	}
	l := wp.Value()
	if l == nil || l.IsClosed() {
		return nil
	}
	return l
}

func (e *Environment) liveLoggersLocked() []*Logger {
	loggers := make([]*Logger, 0, len(e.loggers))
	for name := range e.loggers {
		if l := e.lookupLocked(name); l != nil {
			loggers = append(loggers, l)
		}
	}
	return loggers
}

// prune drops the entry of a collected logger.
func (e *Environment) prune(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if wp, ok := e.loggers[name]; ok && wp.Value() == nil {
		delete(e.loggers, name)
	}
}

// deregister drops the entry of a closed logger.
func (e *Environment) deregister(l *Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if wp, ok := e.loggers[l.name]; ok && wp.Value() == l {
		delete(e.loggers, l.name)
	}
	if e.std == l {
		e.std = nil
	}
}

// New returns the logger called name from the Default environment,
// creating it with opts if needed.
func New(name string, opts ...Option) (*Logger, error) {
	return Default().Logger(name, opts...)
}

// Must panics if err is not nil and returns l otherwise.
//
//	log := lumen.Must(lumen.New("svc", lumen.WithPath("svc.log")))
func Must(l *Logger, err error) *Logger {
	if err != nil {
		panic(err)
	}
	return l
}
