package formatters

import (
	"github.com/valyala/bytebufferpool"

	"github.com/wayneeseguin/lumen/internal/buffer"
)

// Template is a compiled message template. Placeholders are written as
// $name or ${name}; "$$" produces a literal dollar sign. Placeholders
// without a value are left verbatim, so executing a template never fails.
type Template struct {
	source   string
	segments []segment
}

type segment struct {
	literal string
	key     string // placeholder name, empty for literals
	raw     string // placeholder as written, used when no value is set
}

// Compile parses format into a Template. A trailing newline is appended to
// every execution.
func Compile(format string) *Template {
	t := &Template{source: format}

	lit := make([]byte, 0, len(format))
	flush := func() {
		if len(lit) > 0 {
			t.segments = append(t.segments, segment{literal: string(lit)})
			lit = lit[:0]
		}
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '$' || i+1 >= len(format) {
			lit = append(lit, c)
			continue
		}

		next := format[i+1]
		switch {
		case next == '$':
			lit = append(lit, '$')
			i++
		case next == '{':
			end := i + 2
			for end < len(format) && format[end] != '}' {
				end++
			}
			name := format[i+2 : min(end, len(format))]
			if end >= len(format) || !isIdentifier(name) {
				lit = append(lit, c)
				continue
			}
			flush()
			t.segments = append(t.segments, segment{key: name, raw: format[i : end+1]})
			i = end
		case isIdentStart(next):
			end := i + 1
			for end < len(format) && isIdentPart(format[end]) {
				end++
			}
			flush()
			t.segments = append(t.segments, segment{key: format[i+1 : end], raw: format[i:end]})
			i = end - 1
		default:
			lit = append(lit, c)
		}
	}
	flush()
	t.segments = append(t.segments, segment{literal: "\n"})
	return t
}

// Source returns the format the template was compiled from.
func (t *Template) Source() string {
	return t.source
}

// Keys returns the placeholder names in order of appearance.
func (t *Template) Keys() []string {
	var keys []string
	for _, s := range t.segments {
		if s.key != "" {
			keys = append(keys, s.key)
		}
	}
	return keys
}

// Execute substitutes values into the template.
func (t *Template) Execute(values map[string]string) string {
	return buffer.String(func(buf *bytebufferpool.ByteBuffer) {
		for _, s := range t.segments {
			if s.key == "" {
				_, _ = buf.WriteString(s.literal)
				continue
			}
			if v, ok := values[s.key]; ok {
				_, _ = buf.WriteString(v)
			} else {
				_, _ = buf.WriteString(s.raw)
			}
		}
	})
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
