package lumen

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"weak"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/wayneeseguin/lumen/internal/utils"
	"github.com/wayneeseguin/lumen/pkg/backends"
)

// FlushLockName is the lock file, inside the temp dir, that serializes
// buffer replay across processes.
const FlushLockName = "lumen.lock"

// Environment is a logging environment: the named logger registry, the
// module table, the streams registered for every logger and the lock that
// serializes buffer replay. Most programs use the process-wide Default
// environment; tests create isolated ones with NewEnvironment.
type Environment struct {
	mu      sync.Mutex
	loggers map[string]weak.Pointer[Logger]
	std     *Logger // keeps the default logger alive

	streamsMu  sync.Mutex
	streams    map[string]*backends.Shared // open streams by identity
	aggregated []*backends.Shared          // AddAll streams in registration order

	modules *moduleTable

	mainID        uint64
	processWorker string
	workers       sync.Map // goroutine id -> worker name

	flushMu   sync.Mutex
	flushLock *flock.Flock

	configMu     sync.RWMutex
	config       EnvironmentConfig
	traceWriter  io.Writer
	traceHandler ErrorHandler // writes to traceWriter
	errorHandler ErrorHandler
}

// EnvOption configures an Environment.
type EnvOption func(*Environment) error

var (
	defaultEnv     *Environment
	defaultEnvOnce sync.Once
)

// Default returns the process-wide environment. It is configured from
// LUMEN_* environment variables on first use, and its main goroutine is
// the goroutine running main. A configuration error is reported on the
// trace writer and the built-in defaults are used instead.
func Default() *Environment {
	defaultEnvOnce.Do(func() {
		cfg, err := LoadConfig("")
		if err != nil {
			defaults := DefaultEnvironmentConfig()
			cfg = &defaults
		}
		defaultEnv = newEnvironment(*cfg)
		defaultEnv.mainID = 1
		if err != nil {
			defaultEnv.reportError(LogError{
				Operation: "config",
				Message:   "invalid LUMEN_* configuration, using defaults",
				Err:       err,
				Level:     ErrorLevelLow,
			})
		}
	})
	return defaultEnv
}

// NewEnvironment creates an isolated environment. The calling goroutine
// becomes its main goroutine: records logged from any other goroutine are
// buffered until the logger is closed or flushed.
func NewEnvironment(opts ...EnvOption) (*Environment, error) {
	e := newEnvironment(DefaultEnvironmentConfig())
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if err := e.config.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func newEnvironment(cfg EnvironmentConfig) *Environment {
	return &Environment{
		loggers:       make(map[string]weak.Pointer[Logger]),
		streams:       make(map[string]*backends.Shared),
		modules:       newModuleTable(),
		mainID:        utils.GoroutineID(),
		processWorker: os.Getenv(WorkerEnvVar),
		config:        cfg,
		traceWriter:   os.Stderr,
		traceHandler:  TraceErrorHandler(os.Stderr),
	}
}

// EnvConfig replaces the whole configuration.
func EnvConfig(cfg *EnvironmentConfig) EnvOption {
	return func(e *Environment) error {
		if cfg == nil {
			return errors.New("config cannot be nil")
		}
		e.config = *cfg
		return nil
	}
}

// EnvTempDir sets the directory of scratch files and of the flush lock.
func EnvTempDir(dir string) EnvOption {
	return func(e *Environment) error {
		if dir == "" {
			return errors.New("temp dir cannot be empty")
		}
		e.config.TempDir = dir
		return nil
	}
}

// EnvTraceWriter sets where failure traces are written. The default is stderr.
func EnvTraceWriter(w io.Writer) EnvOption {
	return func(e *Environment) error {
		if w == nil {
			return errors.New("trace writer cannot be nil")
		}
		e.traceWriter = w
		e.traceHandler = TraceErrorHandler(w)
		return nil
	}
}

// EnvForceColorize colorizes every stream of loggers created afterwards.
func EnvForceColorize(force bool) EnvOption {
	return func(e *Environment) error {
		e.config.ForceColorize = force
		return nil
	}
}

// EnvBuffering sets the default buffering of new loggers.
func EnvBuffering(enabled bool) EnvOption {
	return func(e *Environment) error {
		e.config.Buffering = enabled
		return nil
	}
}

// EnvDefaultLevel sets the default minimum level of new loggers.
func EnvDefaultLevel(level Level) EnvOption {
	return func(e *Environment) error {
		if !level.Valid() {
			return errors.Wrapf(ErrUnknownLevel, "level %d", int(level))
		}
		e.config.Level = level.String()
		return nil
	}
}

// EnvDefaultFormat sets the default message template of new loggers.
func EnvDefaultFormat(format string) EnvOption {
	return func(e *Environment) error {
		e.config.Format = format
		return nil
	}
}

// EnvErrorHandler sets the default handler for contained failures.
func EnvErrorHandler(handler ErrorHandler) EnvOption {
	return func(e *Environment) error {
		e.errorHandler = handler
		return nil
	}
}

// EnvWorker marks the whole environment as running in a worker process,
// as if LUMEN_WORKER were set to name.
func EnvWorker(name string) EnvOption {
	return func(e *Environment) error {
		e.processWorker = name
		return nil
	}
}

// Config returns a copy of the environment configuration.
func (e *Environment) Config() EnvironmentConfig {
	e.configMu.RLock()
	defer e.configMu.RUnlock()
	return e.config
}

// SetMainGoroutine makes the calling goroutine the main goroutine.
func (e *Environment) SetMainGoroutine() {
	e.configMu.Lock()
	defer e.configMu.Unlock()
	e.mainID = utils.GoroutineID()
}

// Go runs fn in a new goroutine registered as the worker called name.
// Records logged by fn are attributed to that worker. The returned channel
// is closed when fn returns.
func (e *Environment) Go(name string, fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		id := utils.GoroutineID()
		e.workers.Store(id, name)
		defer e.workers.Delete(id)
		defer e.releaseWorker(name)
		fn()
	}()
	return done
}

// releaseWorker lets every live logger close the scratch file descriptor
// of a finished worker.
func (e *Environment) releaseWorker(name string) {
	e.mu.Lock()
	loggers := e.liveLoggersLocked()
	e.mu.Unlock()
	for _, l := range loggers {
		l.releaseWorker(name)
	}
}

// WorkerContext reports whether the caller runs outside the main
// goroutine of the main process, and the worker name if so.
func (e *Environment) WorkerContext() (string, bool) {
	if e.processWorker != "" {
		return e.processWorker, true
	}

	id := utils.GoroutineID()
	e.configMu.RLock()
	main := e.mainID
	e.configMu.RUnlock()
	if id == main {
		return "", false
	}
	if name, ok := e.workers.Load(id); ok {
		return name.(string), true
	}
	return "goroutine-" + strconv.FormatUint(id, 10), true
}

// lockFlush serializes buffer replay with every other logger of this
// process and, through a lock file, of other processes sharing the temp
// dir. The returned function releases both locks.
func (e *Environment) lockFlush() func() {
	e.flushMu.Lock()

	if e.flushLock == nil {
		e.flushLock = flock.New(filepath.Join(e.Config().TempDir, FlushLockName))
	}
	if err := e.flushLock.Lock(); err != nil {
		// the in-process lock still holds
		e.reportError(LogError{
			Operation:   "lock",
			Destination: e.flushLock.Path(),
			Message:     "cannot acquire flush lock file",
			Err:         errors.Wrap(err, "flock"),
			Level:       ErrorLevelLow,
		})
		return e.flushMu.Unlock
	}

	return func() {
		_ = e.flushLock.Unlock() // Best effort unlock
		e.flushMu.Unlock()
	}
}

// ErrorHandler returns the handler used by loggers without their own.
func (e *Environment) ErrorHandler() ErrorHandler {
	e.configMu.RLock()
	defer e.configMu.RUnlock()
	if e.errorHandler != nil {
		return e.errorHandler
	}
	return e.traceHandler
}

// TraceWriter returns where failure traces are written.
func (e *Environment) TraceWriter() io.Writer {
	e.configMu.RLock()
	defer e.configMu.RUnlock()
	return e.traceWriter
}

// SetErrorHandler sets the handler used by loggers without their own.
func (e *Environment) SetErrorHandler(handler ErrorHandler) {
	e.configMu.Lock()
	defer e.configMu.Unlock()
	e.errorHandler = handler
}

func (e *Environment) reportError(le LogError) {
	if le.Timestamp.IsZero() {
		le.Timestamp = now()
	}
	e.ErrorHandler()(le)
}

// Reset closes every live logger, releases the streams registered with
// AddAll and restores the module table. Loggers obtained before Reset must
// not be used afterwards.
func (e *Environment) Reset() error {
	e.mu.Lock()
	loggers := e.liveLoggersLocked()
	e.std = nil
	e.mu.Unlock()

	var errs []error
	for _, l := range loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	e.mu.Lock()
	e.streamsMu.Lock()
	aggregated := e.aggregated
	e.aggregated = nil
	e.streamsMu.Unlock()
	e.loggers = make(map[string]weak.Pointer[Logger])
	e.mu.Unlock()

	for _, s := range aggregated {
		if err := s.Release(); err != nil {
			errs = append(errs, err)
		}
	}

	e.modules.reset()

	if len(errs) > 0 {
		return errors.Errorf("reset errors: %v", errs)
	}
	return nil
}
