package formatters

import (
	"regexp"

	"github.com/fatih/color"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Colorize wraps text in the escape codes of fs. Colors are emitted even
// when the process is not attached to a terminal; callers decide when to
// colorize.
func Colorize(text string, fs FieldStyle) string {
	attrs := fs.attributes()
	if len(attrs) == 0 || text == "" {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

// StripANSI removes SGR escape sequences from s.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// HasANSI reports whether s contains an SGR escape sequence.
func HasANSI(s string) bool {
	return ansiPattern.MatchString(s)
}
