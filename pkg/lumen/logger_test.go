package lumen

import (
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lumentesting "github.com/wayneeseguin/lumen/internal/testing"
	"github.com/wayneeseguin/lumen/pkg/formatters"
)

func fixedNow(t *testing.T, ts time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

type panickingWriter struct{}

func (panickingWriter) Write([]byte) (int, error) {
	panic("writer exploded")
}

type recordingHandler struct {
	mu     sync.Mutex
	errors []LogError
}

func (h *recordingHandler) handle(e LogError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, e)
}

func (h *recordingHandler) all() []LogError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]LogError(nil), h.errors...)
}

func TestLoggerWritesEveryStream(t *testing.T) {
	fixedNow(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local))
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "svc.log")
	l, buf := env.memLogger(t, "svc", WithPath(path))

	require.NoError(t, l.Info("hello"))
	require.NoError(t, l.Warningf("%d retries left", 2))
	require.NoError(t, l.Close())

	pattern := regexp.MustCompile(`^svc +2024-01-02 03:04:05 \| (INFO|WARNING) +\| ` +
		regexp.QuoteMeta(testModule) + `:TestLoggerWritesEveryStream:\d+ +- (hello|2 retries left)$`)

	for _, lines := range [][]string{buf.Lines(), lumentesting.ReadLines(t, path)} {
		require.Len(t, lines, 2)
		for _, line := range lines {
			assert.Regexp(t, pattern, line)
			assert.False(t, formatters.HasANSI(line))
		}
	}
}

func TestDefaultLoggerHasNoInstance(t *testing.T) {
	env := newTestEnv(t)
	l, buf := env.memLogger(t, DefaultLoggerName, WithFormat("$instance_name$level|$message"))

	require.NoError(t, l.Success("done"))
	assert.Equal(t, []string{"SUCCESS |done"}, buf.Lines())
}

func TestSprintSemantics(t *testing.T) {
	env := newTestEnv(t)
	l, buf := env.memLogger(t, "svc", WithFormat("$message"))

	require.NoError(t, l.Info("a", "b", 1, 2, "c"))
	require.NoError(t, l.Infof("%s=%d", "n", 3))
	require.NoError(t, l.Log(LevelError, "via ", "Log"))
	require.NoError(t, l.Logf(LevelError, "via %s", "Logf"))

	assert.Equal(t, []string{"ab1 2c", "n=3", "via Log", "via Logf"}, buf.Lines())
}

func TestInteractiveStreamIsColorized(t *testing.T) {
	env := newTestEnv(t)
	plain, term := &syncBuffer{}, &syncBuffer{}
	l, err := env.Logger("svc", WithoutStdout(),
		WithStream(NewWriterStream("plain", plain)),
		WithStream(NewWriterStream("term", term).SetInteractive(true)),
	)
	require.NoError(t, err)

	for _, level := range Levels() {
		require.NoError(t, l.Log(level, "message at ", level))
	}

	colored := term.Lines()
	require.Len(t, colored, len(plain.Lines()))
	for i, line := range colored {
		assert.True(t, formatters.HasANSI(line), line)
		assert.Equal(t, plain.Lines()[i], formatters.StripANSI(line))
	}
	for _, line := range plain.Lines() {
		assert.False(t, formatters.HasANSI(line), line)
	}
}

func TestForceColorize(t *testing.T) {
	env := newTestEnv(t)
	l, buf := env.memLogger(t, "svc", WithForceColorize(true))

	require.NoError(t, l.Info("bright"))
	l.SetForceColorize(false)
	require.NoError(t, l.Info("dull"))

	lines := buf.Lines()
	require.Len(t, lines, 2)
	assert.True(t, formatters.HasANSI(lines[0]))
	assert.False(t, formatters.HasANSI(lines[1]))
	assert.Equal(t, []string{"bright", "dull"}, messages(plainLines(lines)))
}

func TestEnvForceColorize(t *testing.T) {
	env := newTestEnv(t, EnvForceColorize(true))
	l, buf := env.memLogger(t, "svc")

	assert.True(t, l.ForceColorize())
	require.NoError(t, l.Info("bright"))
	assert.True(t, formatters.HasANSI(buf.String()))
}

func TestDeleteLevelHidesTime(t *testing.T) {
	fixedNow(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local))
	env := newTestEnv(t)
	l, buf := env.memLogger(t, "svc", WithLevel(LevelTrace))

	require.NoError(t, l.Destructor("gone"))
	lines := buf.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "................... | DELETE   |")
}

func TestSetFormatAndTimeFormat(t *testing.T) {
	fixedNow(t, time.Date(2024, 1, 2, 15, 4, 5, 0, time.Local))
	env := newTestEnv(t)
	l, buf := env.memLogger(t, "svc")

	l.SetFormat("[$time] $message")
	l.SetTimeFormat(time.Kitchen)
	assert.Equal(t, "[$time] $message", l.Format())
	assert.Equal(t, time.Kitchen, l.TimeFormat())

	require.NoError(t, l.Info("tea"))
	assert.Equal(t, []string{"[3:04PM] tea"}, buf.Lines())
}

func TestWriteErrorGoesToHandler(t *testing.T) {
	env := newTestEnv(t)
	h := &recordingHandler{}
	good := &syncBuffer{}
	l, err := env.Logger("svc", WithoutStdout(),
		WithStream(NewWriterStream("bad", failingWriter{})),
		WithStream(NewWriterStream("good", good)),
		WithErrorHandler(h.handle),
	)
	require.NoError(t, err)

	require.NoError(t, l.Error("still delivered"))
	assert.Equal(t, []string{"still delivered"}, messages(good.Lines()))

	errs := h.all()
	require.Len(t, errs, 1)
	assert.Equal(t, "write", errs[0].Operation)
	assert.Equal(t, "bad", errs[0].Destination)
	assert.Equal(t, "svc", errs[0].Logger)
	assert.Equal(t, ErrorLevelHigh, errs[0].Level)
	assert.Contains(t, errs[0].Error(), "disk full")
	assert.Empty(t, env.trace.String())

	m := l.Metrics()
	assert.Equal(t, uint64(1), m.ErrorCount)
	assert.Equal(t, uint64(1), m.ErrorsBySource["write"])
}

func TestPanickingStreamIsContained(t *testing.T) {
	env := newTestEnv(t)
	l, err := env.Logger("svc", WithoutStdout(),
		WithStream(NewWriterStream("boom", panickingWriter{})))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		assert.NoError(t, l.Critical("survive"))
	})

	trace := env.trace.String()
	assert.Contains(t, trace, TraceStart)
	assert.Contains(t, trace, TraceEnd)
	assert.Contains(t, trace, "operation: panic (high)")
	assert.Contains(t, trace, "writer exploded")
}

func TestEnvironmentErrorHandler(t *testing.T) {
	h := &recordingHandler{}
	env := newTestEnv(t, EnvErrorHandler(h.handle))
	l, err := env.Logger("svc", WithoutStdout(),
		WithStream(NewWriterStream("bad", failingWriter{})))
	require.NoError(t, err)

	require.NoError(t, l.Info("x"))
	require.Len(t, h.all(), 1)

	// a logger handler takes precedence
	own := &recordingHandler{}
	l.SetErrorHandler(own.handle)
	require.NoError(t, l.Info("y"))
	assert.Len(t, h.all(), 1)
	assert.Len(t, own.all(), 1)
}

func TestClosedLogger(t *testing.T) {
	env := newTestEnv(t)
	l, _ := env.memLogger(t, "svc")

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	assert.True(t, l.IsClosed())
	assert.ErrorIs(t, l.Info("late"), ErrLoggerClosed)
	assert.NoError(t, l.Flush())
}

func TestLoggerMetrics(t *testing.T) {
	env := newTestEnv(t)
	l, _ := env.memLogger(t, "svc")

	require.NoError(t, l.Info("one"))
	require.NoError(t, l.Info("two"))
	require.NoError(t, l.Error("three"))
	require.NoError(t, l.Debug("filtered"))

	m := l.Metrics()
	assert.Equal(t, uint64(2), m.MessagesLogged[LevelInfo])
	assert.Equal(t, uint64(1), m.MessagesLogged[LevelError])
	assert.Equal(t, uint64(1), m.MessagesFiltered)
	assert.Equal(t, uint64(3), m.WriteCount)
	assert.Positive(t, m.BytesWritten)

	require.Len(t, m.Streams, 1)
	assert.Equal(t, "svc-mem", m.Streams[0].Name)
	assert.Equal(t, uint64(3), m.Streams[0].WriteCount)
	assert.Equal(t, 1, m.Streams[0].Refs)

	l.ResetMetrics()
	assert.Zero(t, l.Metrics().WriteCount)
}

func TestLoggerString(t *testing.T) {
	env := newTestEnv(t)
	l, _ := env.memLogger(t, "svc", WithLevel(LevelWarning))

	assert.Equal(t, "Logger(svc, level=WARNING, streams=[svc-mem])", l.String())
	assert.Equal(t, "svc", l.Name())
	assert.Same(t, env.Environment, l.Environment())
}

func TestSetLevelName(t *testing.T) {
	env := newTestEnv(t)
	l, _ := env.memLogger(t, "svc")

	require.NoError(t, l.SetLevelName("ERROR"))
	assert.Equal(t, LevelError, l.Level())

	err := l.SetLevelName("loud")
	assert.ErrorIs(t, err, ErrUnknownLevel)
	assert.Equal(t, LevelError, l.Level())
}

func TestConcurrentLoggingFromMain(t *testing.T) {
	env := newTestEnv(t, EnvBuffering(false))
	l, buf := env.memLogger(t, "svc", WithFormat("$message"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				assert.NoError(t, l.Info("line"))
			}
		}()
	}
	wg.Wait()

	lines := buf.Lines()
	assert.Len(t, lines, 200)
	for _, line := range lines {
		assert.Equal(t, "line", strings.TrimSpace(line))
	}
}

func TestTimeZone(t *testing.T) {
	fixedNow(t, time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC))
	env := newTestEnv(t)
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	l, buf := env.memLogger(t, "svc", WithFormat("$time $message"), WithTimeZone(plus2))

	assert.Equal(t, plus2, l.TimeZone())
	require.NoError(t, l.Info("east"))
	l.SetTimeZone(time.UTC)
	require.NoError(t, l.Info("utc"))

	assert.Equal(t, []string{"2024-01-02 17:04:05 east", "2024-01-02 15:04:05 utc"}, buf.Lines())

	_, err := env.Logger("nozone", WithTimeZone(nil))
	assert.Error(t, err)
}

func TestUndefinedLevelIsRejected(t *testing.T) {
	env := newTestEnv(t)
	l, buf := env.memLogger(t, "svc")

	assert.ErrorIs(t, l.Log(Level(99), "x"), ErrUnknownLevel)
	assert.ErrorIs(t, l.Logf(Level(-1), "%s", "x"), ErrUnknownLevel)

	<-env.Go("w", func() {
		assert.ErrorIs(t, l.Log(Level(99), "from a worker"), ErrUnknownLevel)
	})
	assert.Zero(t, l.Pending())
	assert.Empty(t, buf.Lines())
	assert.Empty(t, env.trace.String())
}

func TestPanicInFilterIsContained(t *testing.T) {
	env := newTestEnv(t)
	l, buf := env.memLogger(t, "svc")

	// a broken cache entry makes the level check panic
	l.levelCache.Store(LevelInfo, "not a bool")

	assert.NotPanics(t, func() {
		assert.NoError(t, l.Info("lost"))
	})
	assert.Empty(t, buf.Lines())

	trace := env.trace.String()
	assert.Contains(t, trace, "operation: panic (high)")
	assert.Contains(t, trace, "panic: interface conversion")

	l.SetLevel(LevelInfo)
	require.NoError(t, l.Info("recovered"))
	assert.Equal(t, []string{"recovered"}, messages(buf.Lines()))
}

func TestPanicErrorKeepsErrorValues(t *testing.T) {
	cause := errors.New("boom")
	assert.ErrorIs(t, panicError(cause), cause)
	assert.EqualError(t, panicError("text"), "panic: text")
}
