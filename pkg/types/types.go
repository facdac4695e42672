package types

import (
	"strconv"
	"time"
)

// CallSite identifies where a logging call was issued.
// Module is the import path of the calling package and Function the
// function name inside it (methods keep their receiver, e.g. "(*Server).Start").
type CallSite struct {
	Module   string `json:"module"`
	Function string `json:"function"`
	Line     int    `json:"line"`
}

// String renders the call site as "module:function:line".
func (c CallSite) String() string {
	return c.Module + ":" + c.Function + ":" + strconv.Itoa(c.Line)
}

// IsZero reports whether the call site was never resolved.
func (c CallSite) IsZero() bool {
	return c.Module == "" && c.Function == "" && c.Line == 0
}

// Record is a single log event. It is the unit the formatters render and
// the unit worker scratch files persist, so that buffered output can be
// re-rendered per destination when it is replayed.
type Record struct {
	Level    Level     `json:"level"`
	Time     time.Time `json:"time"`
	Message  string    `json:"message"`
	CallSite CallSite  `json:"call_site"`
	Instance string    `json:"instance"`
	Worker   string    `json:"worker,omitempty"`
}

// Formatter renders a record into a line of text.
type Formatter interface {
	// Render formats the record. colorize selects the ANSI rendering.
	Render(rec Record, colorize bool) string
}

// Stats represents statistics for a stream
type Stats struct {
	WriteCount   uint64
	BytesWritten uint64
	ErrorCount   uint64
	LastWrite    time.Time
	LastError    time.Time
}
