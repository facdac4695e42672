package lumen

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// DefaultTraceWidth is the banner width used when the trace writer is not
// a terminal.
const DefaultTraceWidth = 80

// Trace banner titles.
const (
	TraceStart = "[Start Trace]"
	TraceEnd   = "[End Trace]"
)

// TraceWidth returns the column count of w when it is a terminal, and
// DefaultTraceWidth otherwise.
func TraceWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return DefaultTraceWidth
	}
	fd := int(f.Fd()) // #nosec G115 - fd fits in int
	if !term.IsTerminal(fd) {
		return DefaultTraceWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return DefaultTraceWidth
	}
	return width
}

// Banner centers title in a line of '=' characters of the given width.
func Banner(title string, width int) string {
	fill := width - len(title)
	if fill <= 0 {
		return title
	}
	left := fill / 2
	return strings.Repeat("=", left) + title + strings.Repeat("=", fill-left)
}

// WriteTrace dumps e to w framed by start and end banners. The underlying
// error is printed with %+v so errors carrying a stack show it.
func WriteTrace(w io.Writer, e LogError) error {
	width := TraceWidth(w)

	var b strings.Builder
	b.WriteString(Banner(TraceStart, width))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "time:      %s\n", e.Timestamp.Format(time.RFC3339))
	if e.Logger != "" {
		fmt.Fprintf(&b, "logger:    %s\n", e.Logger)
	}
	fmt.Fprintf(&b, "operation: %s (%s)\n", e.Operation, e.Level)
	if e.Destination != "" {
		fmt.Fprintf(&b, "stream:    %s\n", e.Destination)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, "message:   %s\n", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, "%+v\n", e.Err)
	}
	b.WriteString(Banner(TraceEnd, width))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// TraceErrorHandler returns an ErrorHandler that writes trace dumps to w.
// Dumps from concurrent callers do not interleave.
func TraceErrorHandler(w io.Writer) ErrorHandler {
	var mu sync.Mutex
	return func(e LogError) {
		mu.Lock()
		defer mu.Unlock()
		_ = WriteTrace(w, e)
	}
}
