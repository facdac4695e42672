package lumen

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/wayneeseguin/lumen/internal/buffer"
	"github.com/wayneeseguin/lumen/internal/metrics"
	"github.com/wayneeseguin/lumen/internal/utils"
	"github.com/wayneeseguin/lumen/pkg/backends"
	"github.com/wayneeseguin/lumen/pkg/formatters"
	"github.com/wayneeseguin/lumen/pkg/types"
)

var now = time.Now

// Logger is a named logger. It renders leveled messages and writes them to
// its streams, or buffers them while it is called from a worker context.
// At most one live Logger exists per name in an Environment.
type Logger struct {
	env  *Environment
	name string

	mu            sync.RWMutex
	level         Level
	streams       []*backends.Shared
	forceColorize bool
	buffering     bool
	tempDir       string
	errorHandler  ErrorHandler

	formatter *formatters.TextFormatter

	// levelCache is written under mu read-locked and cleared under mu
	// write-locked, see moduleTable.
	levelCache sync.Map // Level -> bool

	scratchMu     sync.Mutex
	scratches     map[string]*buffer.Scratch // by worker name
	scratchOrder  []*buffer.Scratch          // creation order
	openScratches *lru.Cache[*buffer.Scratch, struct{}]

	closed  atomic.Bool
	metrics *metrics.Collector
}

func (e *Environment) loggerConfig() *Config {
	c := e.Config()
	return &Config{
		Level:         c.level(),
		Stdout:        true,
		Format:        c.Format,
		TimeFormat:    c.TimeFormat,
		Style:         formatters.DefaultStyle(),
		ForceColorize: c.ForceColorize,
		Buffering:     c.Buffering,
		TempDir:       c.TempDir,
	}
}

// newLogger builds a logger from the environment defaults and opts. It is
// called with e.mu held.
func (e *Environment) newLogger(name string, opts ...Option) (*Logger, error) {
	cfg := e.loggerConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errors.Wrapf(err, "logger %q", name)
		}
	}

	l := &Logger{
		env:           e,
		name:          name,
		level:         cfg.Level,
		forceColorize: cfg.ForceColorize,
		buffering:     cfg.Buffering,
		tempDir:       cfg.TempDir,
		errorHandler:  cfg.ErrorHandler,
		formatter: formatters.NewTextFormatter(formatters.FormatOptions{
			Format:          cfg.Format,
			TimestampFormat: cfg.TimeFormat,
			TimeZone:        cfg.TimeZone,
			DefaultInstance: DefaultLoggerName,
			Style:           cfg.Style,
		}),
		scratches: make(map[string]*buffer.Scratch),
		metrics:   metrics.NewCollector(),
	}
	l.openScratches = l.newOpenScratches()

	var streams []*backends.Shared
	fail := func(err error) (*Logger, error) {
		for _, s := range streams {
			_ = s.Release()
		}
		return nil, errors.Wrapf(err, "logger %q", name)
	}

	if cfg.Stdout {
		sh, err := e.acquire(backends.Stdout())
		if err != nil {
			return fail(err)
		}
		streams = append(streams, sh)
	}
	for _, p := range cfg.Paths {
		sh, err := e.acquirePath(p.Path, p.Mode)
		if err != nil {
			return fail(err)
		}
		streams = append(streams, sh)
	}
	for _, s := range cfg.Streams {
		sh, err := e.acquire(s)
		if err != nil {
			return fail(err)
		}
		streams = append(streams, sh)
	}
	streams = append(streams, e.inherited()...)

	for _, sh := range streams {
		l.attach(sh)
	}
	return l, nil
}

// Name returns the logger name.
func (l *Logger) Name() string {
	return l.name
}

// String describes the logger.
func (l *Logger) String() string {
	return fmt.Sprintf("Logger(%s, level=%s, streams=[%s])",
		l.name, l.Level(), strings.Join(l.Streams(), ", "))
}

// Environment returns the environment the logger is registered in.
func (l *Logger) Environment() *Environment {
	return l.env
}

// Level returns the minimum level.
func (l *Logger) Level() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetLevel sets the minimum level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.levelCache.Clear()
}

// SetLevelName sets the minimum level by name.
func (l *Logger) SetLevelName(name string) error {
	level, err := ParseLevel(name)
	if err != nil {
		return err
	}
	l.SetLevel(level)
	return nil
}

// IsEnabledFor reports whether messages at level pass the level threshold.
func (l *Logger) IsEnabledFor(level Level) bool {
	if v, ok := l.levelCache.Load(level); ok {
		return v.(bool)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	enabled := level >= l.level
	l.levelCache.Store(level, enabled)
	return enabled
}

// Format returns the message template.
func (l *Logger) Format() string {
	return l.formatter.Options().Format
}

// SetFormat sets the message template.
func (l *Logger) SetFormat(format string) {
	l.formatter.SetFormat(format)
}

// TimeFormat returns the time layout.
func (l *Logger) TimeFormat() string {
	return l.formatter.Options().TimestampFormat
}

// SetTimeFormat sets the time layout.
func (l *Logger) SetTimeFormat(layout string) {
	l.formatter.SetTimestampFormat(layout)
}

// TimeZone returns the location times are rendered in, nil for the
// record's own location.
func (l *Logger) TimeZone() *time.Location {
	return l.formatter.Options().TimeZone
}

// SetTimeZone renders times in loc. nil restores the record's location.
func (l *Logger) SetTimeZone(loc *time.Location) {
	l.formatter.SetTimeZone(loc)
}

// Style returns the color scheme.
func (l *Logger) Style() formatters.Style {
	return l.formatter.Options().Style
}

// SetStyle sets the color scheme.
func (l *Logger) SetStyle(style formatters.Style) {
	l.formatter.SetStyle(style)
}

// ForceColorize reports whether every stream receives colorized output.
func (l *Logger) ForceColorize() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.forceColorize
}

// SetForceColorize colorizes output on every stream, not only on
// interactive ones.
func (l *Logger) SetForceColorize(force bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.forceColorize = force
}

// Buffering reports whether worker output is buffered.
func (l *Logger) Buffering() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buffering
}

// SetBuffering turns worker buffering on or off. With buffering off,
// workers write straight to the streams and their lines may interleave.
// Records already buffered stay buffered until Flush or Close.
func (l *Logger) SetBuffering(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buffering = enabled
}

// SetErrorHandler sets the handler for contained failures. nil restores
// the environment handler.
func (l *Logger) SetErrorHandler(handler ErrorHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorHandler = handler
}

// Enable enables modules in the logger's environment. See Environment.Enable.
func (l *Logger) Enable(modules ...string) {
	l.env.Enable(modules...)
}

// Disable disables modules in the logger's environment. See Environment.Disable.
func (l *Logger) Disable(modules ...string) {
	l.env.Disable(modules...)
}

// EnableCaller enables the package calling it.
func (l *Logger) EnableCaller() {
	l.env.Enable(utils.ResolveCallSite(utils.CallerPC(1)).Module)
}

// DisableCaller disables the package calling it.
func (l *Logger) DisableCaller() {
	l.env.Disable(utils.ResolveCallSite(utils.CallerPC(1)).Module)
}

// Trace logs at TRACE level. Arguments are handled in the manner of fmt.Sprint.
func (l *Logger) Trace(args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelTrace, "", args, false)
}

// Tracef logs at TRACE level. Arguments are handled in the manner of fmt.Sprintf.
func (l *Logger) Tracef(format string, args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelTrace, format, args, true)
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelDebug, "", args, false)
}

// Debugf logs a formatted message at DEBUG level.
func (l *Logger) Debugf(format string, args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelDebug, format, args, true)
}

// Info logs at INFO level.
func (l *Logger) Info(args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelInfo, "", args, false)
}

// Infof logs a formatted message at INFO level.
func (l *Logger) Infof(format string, args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelInfo, format, args, true)
}

// Destructor logs at DELETE level. The time column of these lines is
// blanked out with dots.
func (l *Logger) Destructor(args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelDelete, "", args, false)
}

// Destructorf logs a formatted message at DELETE level.
func (l *Logger) Destructorf(format string, args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelDelete, format, args, true)
}

// Success logs at SUCCESS level.
func (l *Logger) Success(args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelSuccess, "", args, false)
}

// Successf logs a formatted message at SUCCESS level.
func (l *Logger) Successf(format string, args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelSuccess, format, args, true)
}

// Warning logs at WARNING level.
func (l *Logger) Warning(args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelWarning, "", args, false)
}

// Warningf logs a formatted message at WARNING level.
func (l *Logger) Warningf(format string, args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelWarning, format, args, true)
}

// Error logs at ERROR level.
func (l *Logger) Error(args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelError, "", args, false)
}

// Errorf logs a formatted message at ERROR level.
func (l *Logger) Errorf(format string, args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelError, format, args, true)
}

// Critical logs at CRITICAL level.
func (l *Logger) Critical(args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelCritical, "", args, false)
}

// Criticalf logs a formatted message at CRITICAL level.
func (l *Logger) Criticalf(format string, args ...interface{}) error {
	return l.log(utils.CallerPC(1), LevelCritical, format, args, true)
}

// Log logs at the given level. An undefined level returns an error
// wrapping ErrUnknownLevel.
func (l *Logger) Log(level Level, args ...interface{}) error {
	return l.log(utils.CallerPC(1), level, "", args, false)
}

// Logf logs a formatted message at the given level.
func (l *Logger) Logf(level Level, format string, args ...interface{}) error {
	return l.log(utils.CallerPC(1), level, format, args, true)
}

// log is the single path of every leveled call. pc identifies the caller
// of the public method. Only ErrNoStreams, ErrLoggerClosed and, for an
// undefined level, ErrUnknownLevel are returned; every other failure,
// panics included, goes to the error handler.
func (l *Logger) log(pc uintptr, level Level, format string, args []interface{}, printf bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.reportError(LogError{
				Operation: "panic",
				Message:   "recovered from panic while logging",
				Err:       panicError(r),
				Level:     ErrorLevelHigh,
			})
			err = nil
		}
	}()

	if l.IsClosed() {
		return errors.Wrapf(ErrLoggerClosed, "logger %q", l.name)
	}
	if !level.Valid() {
		return errors.Wrapf(ErrUnknownLevel, "level %d", int(level))
	}
	if !l.IsEnabledFor(level) {
		l.metrics.TrackFiltered()
		return nil
	}
	callSite := utils.ResolveCallSite(pc)
	if !l.env.modules.enabled(callSite.Module) {
		l.metrics.TrackFiltered()
		return nil
	}

	streams := l.snapshot()
	if len(streams) == 0 {
		return errors.Wrapf(ErrNoStreams, "logger %q", l.name)
	}

	var message string
	if printf {
		message = fmt.Sprintf(format, args...)
	} else {
		message = fmt.Sprint(args...)
	}

	rec := types.Record{
		Level:    level,
		Time:     now(),
		Message:  message,
		CallSite: callSite,
		Instance: l.name,
	}
	worker, isWorker := l.env.WorkerContext()
	if isWorker {
		rec.Worker = worker
	}
	l.metrics.TrackMessageLogged(level)

	if isWorker && l.Buffering() && l.bufferRecord(worker, rec) {
		return nil
	}
	l.dispatch(streams, rec)
	return nil
}

// panicError turns a recovered value into an error carrying a stack.
func panicError(r interface{}) error {
	if err, ok := r.(error); ok {
		return errors.Wrap(err, "panic")
	}
	return errors.Errorf("panic: %v", r)
}

// dispatch renders rec once per flavor and writes it to every stream.
func (l *Logger) dispatch(streams []*backends.Shared, rec types.Record) {
	force := l.ForceColorize()

	var plain, colored string
	for _, s := range streams {
		var line string
		if force || s.Interactive() {
			if colored == "" {
				colored = l.formatter.Render(rec, true)
			}
			line = colored
		} else {
			if plain == "" {
				plain = l.formatter.Render(rec, false)
			}
			line = plain
		}

		start := time.Now()
		n, err := io.WriteString(s, line)
		l.metrics.TrackWrite(n, time.Since(start))
		if err != nil {
			l.reportError(LogError{
				Operation:   "write",
				Destination: s.Name(),
				Message:     "write failed",
				Err:         errors.WithStack(err),
				Level:       ErrorLevelHigh,
			})
		}
	}
}

func (l *Logger) reportError(le LogError) {
	l.metrics.TrackError(le.Operation)
	le.Logger = l.name
	if le.Timestamp.IsZero() {
		le.Timestamp = now()
	}

	l.mu.RLock()
	handler := l.errorHandler
	l.mu.RUnlock()
	if handler == nil {
		handler = l.env.ErrorHandler()
	}
	handler(le)
}

// IsClosed reports whether Close was called.
func (l *Logger) IsClosed() bool {
	return l.closed.Load()
}

// Close replays buffered worker output, releases the logger's streams and
// frees its name. Streams still used by other loggers or registered with
// AddAll stay open.
func (l *Logger) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if err := l.flush(); err != nil {
		errs = append(errs, err)
	}
	l.discardScratches()

	if err := l.Clear(); err != nil {
		errs = append(errs, err)
	}
	l.env.deregister(l)

	if len(errs) > 0 {
		return errors.Errorf("close logger %q: %v", l.name, errs)
	}
	return nil
}
