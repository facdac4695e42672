package formatters

import (
	"time"
)

// DefaultFormat is the message template used when none is configured.
const DefaultFormat = "$instance_name $time | $level | $program_line - $message"

// DefaultTimestampFormat renders timestamps as YYYY-MM-DD HH:MM:SS.
const DefaultTimestampFormat = "2006-01-02 15:04:05"

// DefaultInstanceName is the logger name whose instance field collapses to empty.
const DefaultInstanceName = "default"

// Template placeholders.
const (
	KeyInstanceName = "instance_name"
	KeyTime         = "time"
	KeyLevel        = "level"
	KeyProgramLine  = "program_line"
	KeyStack        = "stack" // alias of program_line
	KeyMessage      = "message"
)

// Column widths used to keep fields aligned.
const (
	InstanceWidth       = 12
	WorkerInstanceWidth = 24
	LevelWidth          = 8
	CallSiteWidth       = 52
)

// FormatOptions controls the output format
type FormatOptions struct {
	Format          string         // message template
	TimestampFormat string         // time.Format layout
	TimeZone        *time.Location // nil keeps the record's location
	DefaultInstance string         // instance name rendered as empty
	Style           Style
}

// DefaultFormatOptions returns default formatting options
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		Format:          DefaultFormat,
		TimestampFormat: DefaultTimestampFormat,
		DefaultInstance: DefaultInstanceName,
		Style:           DefaultStyle(),
	}
}
