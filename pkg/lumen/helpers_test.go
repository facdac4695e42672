package lumen

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wayneeseguin/lumen/pkg/backends"
	"github.com/wayneeseguin/lumen/pkg/formatters"
)

const testModule = "github.com/wayneeseguin/lumen/pkg/lumen"

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Lines() []string {
	s := strings.TrimSuffix(b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

type testEnv struct {
	*Environment
	dir   string
	trace *syncBuffer
}

func newTestEnv(t *testing.T, opts ...EnvOption) *testEnv {
	t.Helper()
	dir := t.TempDir()
	trace := &syncBuffer{}
	opts = append([]EnvOption{EnvTempDir(dir), EnvTraceWriter(trace)}, opts...)
	env, err := NewEnvironment(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Reset() })
	return &testEnv{Environment: env, dir: dir, trace: trace}
}

// memLogger creates a logger writing only to an in-memory stream.
func (te *testEnv) memLogger(t *testing.T, name string, opts ...Option) (*Logger, *syncBuffer) {
	t.Helper()
	buf := &syncBuffer{}
	opts = append([]Option{WithoutStdout(), WithStream(backends.NewWriterStream(name+"-mem", buf))}, opts...)
	l, err := te.Logger(name, opts...)
	require.NoError(t, err)
	return l, buf
}

func plainLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = formatters.StripANSI(l)
	}
	return out
}
