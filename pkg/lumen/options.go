package lumen

import (
	"time"

	"github.com/pkg/errors"

	"github.com/wayneeseguin/lumen/pkg/backends"
	"github.com/wayneeseguin/lumen/pkg/formatters"
)

// Config contains the construction settings of a Logger. Options mutate
// it; the defaults come from the owning Environment.
type Config struct {
	Level         Level
	Paths         []PathSpec        // files opened at construction
	Streams       []backends.Stream // additional streams
	Stdout        bool              // include the stdout stream
	Format        string            // message template
	TimeFormat    string            // time.Format layout
	TimeZone      *time.Location    // nil keeps local time
	Style         formatters.Style  // colors
	ForceColorize bool              // colorize non-interactive streams too
	Buffering     bool              // buffer worker output until Close
	TempDir       string            // scratch file directory
	ErrorHandler  ErrorHandler      // receives contained failures
}

// PathSpec is a file to open and how to open it.
type PathSpec struct {
	Path string
	Mode backends.OpenMode
}

// Option is a functional option for configuring a Logger
type Option func(*Config) error

// WithLevel sets the minimum log level
func WithLevel(level Level) Option {
	return func(c *Config) error {
		if !level.Valid() {
			return errors.Wrapf(ErrUnknownLevel, "level %d", int(level))
		}
		c.Level = level
		return nil
	}
}

// WithLevelName sets the minimum log level by name, e.g. "DEBUG".
func WithLevelName(name string) Option {
	return func(c *Config) error {
		level, err := ParseLevel(name)
		if err != nil {
			return err
		}
		c.Level = level
		return nil
	}
}

// WithPath adds a file stream, truncating the file.
func WithPath(path string) Option {
	return withPath(path, backends.ModeTruncate)
}

// WithAppendPath adds a file stream, appending to the file.
func WithAppendPath(path string) Option {
	return withPath(path, backends.ModeAppend)
}

func withPath(path string, mode backends.OpenMode) Option {
	return func(c *Config) error {
		if path == "" {
			return errors.New("path cannot be empty")
		}
		c.Paths = append(c.Paths, PathSpec{Path: path, Mode: mode})
		return nil
	}
}

// WithStream adds an output stream.
func WithStream(s backends.Stream) Option {
	return func(c *Config) error {
		if s == nil {
			return errors.New("stream cannot be nil")
		}
		c.Streams = append(c.Streams, s)
		return nil
	}
}

// WithoutStdout leaves the stdout stream out of the initial stream set.
func WithoutStdout() Option {
	return func(c *Config) error {
		c.Stdout = false
		return nil
	}
}

// WithFormat sets the message template.
func WithFormat(format string) Option {
	return func(c *Config) error {
		c.Format = format
		return nil
	}
}

// WithTimeFormat sets the time layout.
func WithTimeFormat(layout string) Option {
	return func(c *Config) error {
		if layout == "" {
			return errors.New("time format cannot be empty")
		}
		c.TimeFormat = layout
		return nil
	}
}

// WithTimeZone renders times in loc, e.g. time.UTC.
func WithTimeZone(loc *time.Location) Option {
	return func(c *Config) error {
		if loc == nil {
			return errors.New("time zone cannot be nil")
		}
		c.TimeZone = loc
		return nil
	}
}

// WithStyle sets the color scheme.
func WithStyle(style formatters.Style) Option {
	return func(c *Config) error {
		c.Style = style
		return nil
	}
}

// WithForceColorize colorizes output on every stream.
func WithForceColorize(force bool) Option {
	return func(c *Config) error {
		c.ForceColorize = force
		return nil
	}
}

// WithBuffering enables or disables worker buffering.
func WithBuffering(enabled bool) Option {
	return func(c *Config) error {
		c.Buffering = enabled
		return nil
	}
}

// WithTempDir sets the directory of worker scratch files.
func WithTempDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return errors.New("temp dir cannot be empty")
		}
		c.TempDir = dir
		return nil
	}
}

// WithErrorHandler sets the handler for contained failures.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *Config) error {
		c.ErrorHandler = handler
		return nil
	}
}
