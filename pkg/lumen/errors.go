package lumen

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/wayneeseguin/lumen/pkg/types"
)

var (
	// ErrNoStreams is returned by a logging call on a logger without any
	// output stream. It is the only failure a leveled call reports.
	ErrNoStreams = errors.New("no output streams configured")

	// ErrStreamNotFound is returned when removing a stream that is not registered.
	ErrStreamNotFound = errors.New("stream not found")

	// ErrStreamConflict is returned when adding a stream whose identity is
	// already used in the environment by a different stream.
	ErrStreamConflict = errors.New("stream identity already in use")

	// ErrLoggerClosed is returned when using a logger after Close.
	ErrLoggerClosed = errors.New("logger closed")

	// ErrUnknownLevel is returned when a level name cannot be parsed.
	ErrUnknownLevel = types.ErrUnknownLevel
)

// ErrorLevel represents the severity of a contained failure
type ErrorLevel int

const (
	// ErrorLevelLow represents minor errors that don't affect output
	ErrorLevelLow ErrorLevel = iota
	// ErrorLevelMedium represents errors where output fell back to another path
	ErrorLevelMedium
	// ErrorLevelHigh represents errors where output was lost
	ErrorLevelHigh
)

// String returns the severity name.
func (l ErrorLevel) String() string {
	switch l {
	case ErrorLevelLow:
		return "low"
	case ErrorLevelMedium:
		return "medium"
	case ErrorLevelHigh:
		return "high"
	default:
		return fmt.Sprintf("ErrorLevel(%d)", int(l))
	}
}

// LogError represents an error that occurred during logging operations.
// Logging calls never fail because of these; they are handed to the
// logger's ErrorHandler instead.
type LogError struct {
	Operation   string     // "write", "buffer", "replay", "panic", ...
	Destination string     // stream identity, if any
	Logger      string     // logger name
	Message     string     // human readable description
	Err         error      // underlying error, carrying a stack trace
	Level       ErrorLevel // severity
	Timestamp   time.Time
}

// Error implements the error interface
func (e LogError) Error() string {
	if e.Destination != "" {
		return fmt.Sprintf("%s error in %s: %s: %v", e.Operation, e.Destination, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Operation, e.Message, e.Err)
}

// Unwrap returns the underlying error
func (e LogError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives contained logging failures.
type ErrorHandler func(err LogError)

// SilentErrorHandler discards all errors (used in tests)
var SilentErrorHandler ErrorHandler = func(LogError) {}
