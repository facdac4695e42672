package formatters

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wayneeseguin/lumen/pkg/types"
)

// TextFormatter renders records through a message template, either as
// plain text or wrapped in ANSI colors. Both renderings use the same column
// widths, so stripping the escapes from a colorized line yields the plain line.
type TextFormatter struct {
	mu       sync.RWMutex
	options  FormatOptions
	template *Template
}

var _ types.Formatter = (*TextFormatter)(nil)

// NewTextFormatter creates a text formatter. Empty option fields fall back
// to their defaults.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	defaults := DefaultFormatOptions()
	if opts.Format == "" {
		opts.Format = defaults.Format
	}
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = defaults.TimestampFormat
	}
	if opts.DefaultInstance == "" {
		opts.DefaultInstance = defaults.DefaultInstance
	}
	if opts.Style.Levels == nil {
		opts.Style = defaults.Style
	}
	return &TextFormatter{
		options:  opts,
		template: Compile(opts.Format),
	}
}

// Options returns a copy of the current options.
func (f *TextFormatter) Options() FormatOptions {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.options
}

// SetFormat recompiles the message template.
func (f *TextFormatter) SetFormat(format string) {
	t := Compile(format)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.options.Format = format
	f.template = t
}

// SetTimestampFormat changes the time layout.
func (f *TextFormatter) SetTimestampFormat(layout string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.options.TimestampFormat = layout
}

// SetTimeZone renders times in loc. nil keeps each record's location.
func (f *TextFormatter) SetTimeZone(loc *time.Location) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.options.TimeZone = loc
}

// SetStyle replaces the color scheme.
func (f *TextFormatter) SetStyle(style Style) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.options.Style = style
}

// Render formats rec into a single line terminated by a newline.
func (f *TextFormatter) Render(rec types.Record, colorize bool) string {
	f.mu.RLock()
	opts := f.options
	tmpl := f.template
	f.mu.RUnlock()

	instance := f.instanceField(rec, opts)
	timestamp := f.timeField(rec, opts)
	level := pad(rec.Level.String(), LevelWidth)
	callSite := pad(rec.CallSite.String(), CallSiteWidth)
	message := rec.Message

	if colorize {
		style := opts.Style
		levelStyle := style.Level(rec.Level)
		instance = Colorize(instance, style.Instance)
		timestamp = Colorize(timestamp, style.Time)
		level = Colorize(level, FieldStyle{
			Foreground: levelStyle.Foreground,
			Font:       style.LevelFont,
			Background: levelStyle.Background,
		})
		callSite = Colorize(callSite, style.CallSite)
		message = Colorize(message, levelStyle)
	}

	line := tmpl.Execute(map[string]string{
		KeyInstanceName: instance,
		KeyTime:         timestamp,
		KeyLevel:        level,
		KeyProgramLine:  callSite,
		KeyStack:        callSite,
		KeyMessage:      message,
	})
	return strings.TrimLeft(line, " \t")
}

func (f *TextFormatter) instanceField(rec types.Record, opts FormatOptions) string {
	if rec.Instance == "" || rec.Instance == opts.DefaultInstance {
		return ""
	}
	if rec.Worker != "" {
		return pad(rec.Instance+" ("+rec.Worker+")", WorkerInstanceWidth)
	}
	return pad(rec.Instance, InstanceWidth)
}

func (f *TextFormatter) timeField(rec types.Record, opts FormatOptions) string {
	t := rec.Time
	if opts.TimeZone != nil {
		t = t.In(opts.TimeZone)
	}
	formatted := t.Format(opts.TimestampFormat)
	if rec.Level == types.LevelDelete {
		return strings.Repeat(".", len(formatted))
	}
	return formatted
}

func pad(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}
