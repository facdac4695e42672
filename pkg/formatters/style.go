package formatters

import (
	"github.com/fatih/color"

	"github.com/wayneeseguin/lumen/pkg/types"
)

// Color is a terminal color usable as foreground or background.
type Color int

const (
	ColorDefault Color = iota
	ColorBlack
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

// FontStyle is a text attribute such as bold or underline.
type FontStyle int

const (
	FontDefault FontStyle = iota
	FontBold
	FontFaded
	FontItalic
	FontUnderline
)

var foregrounds = map[Color]color.Attribute{
	ColorBlack:   color.FgBlack,
	ColorRed:     color.FgRed,
	ColorGreen:   color.FgGreen,
	ColorYellow:  color.FgYellow,
	ColorBlue:    color.FgBlue,
	ColorMagenta: color.FgMagenta,
	ColorCyan:    color.FgCyan,
	ColorWhite:   color.FgWhite,
}

var backgrounds = map[Color]color.Attribute{
	ColorBlack:   color.BgBlack,
	ColorRed:     color.BgRed,
	ColorGreen:   color.BgGreen,
	ColorYellow:  color.BgYellow,
	ColorBlue:    color.BgBlue,
	ColorMagenta: color.BgMagenta,
	ColorCyan:    color.BgCyan,
	ColorWhite:   color.BgWhite,
}

var fonts = map[FontStyle]color.Attribute{
	FontBold:      color.Bold,
	FontFaded:     color.Faint,
	FontItalic:    color.Italic,
	FontUnderline: color.Underline,
}

// FieldStyle is the (foreground, font, background) triple applied to one field.
type FieldStyle struct {
	Foreground Color
	Font       FontStyle
	Background Color
}

// attributes converts the style to fatih/color attributes, skipping defaults.
func (fs FieldStyle) attributes() []color.Attribute {
	attrs := make([]color.Attribute, 0, 3)
	if a, ok := fonts[fs.Font]; ok {
		attrs = append(attrs, a)
	}
	if a, ok := foregrounds[fs.Foreground]; ok {
		attrs = append(attrs, a)
	}
	if a, ok := backgrounds[fs.Background]; ok {
		attrs = append(attrs, a)
	}
	return attrs
}

// Style holds the colors of every rendered field and of every level.
type Style struct {
	Instance  FieldStyle
	Time      FieldStyle
	CallSite  FieldStyle
	LevelFont FontStyle
	Levels    map[types.Level]FieldStyle
}

var defaultLevelStyles = map[types.Level]FieldStyle{
	types.LevelTrace:    {Foreground: ColorCyan, Font: FontBold},
	types.LevelDebug:    {Foreground: ColorBlue, Font: FontBold},
	types.LevelInfo:     {Foreground: ColorWhite, Font: FontBold},
	types.LevelDelete:   {Font: FontFaded},
	types.LevelSuccess:  {Foreground: ColorGreen, Font: FontBold},
	types.LevelWarning:  {Foreground: ColorYellow, Font: FontBold},
	types.LevelError:    {Foreground: ColorRed, Font: FontBold},
	types.LevelCritical: {Foreground: ColorMagenta, Font: FontBold, Background: ColorRed},
}

// DefaultStyle returns the stock color scheme.
func DefaultStyle() Style {
	levels := make(map[types.Level]FieldStyle, len(defaultLevelStyles))
	for l, fs := range defaultLevelStyles {
		levels[l] = fs
	}
	return Style{
		Instance:  FieldStyle{Foreground: ColorYellow},
		Time:      FieldStyle{Foreground: ColorGreen},
		CallSite:  FieldStyle{Foreground: ColorCyan},
		LevelFont: FontBold,
		Levels:    levels,
	}
}

// Level returns the style for l, falling back to the default scheme when
// the level has no entry.
func (s Style) Level(l types.Level) FieldStyle {
	if fs, ok := s.Levels[l]; ok {
		return fs
	}
	return defaultLevelStyles[l]
}

// WithLevel returns a copy of s with the style of l replaced.
func (s Style) WithLevel(l types.Level, fs FieldStyle) Style {
	levels := make(map[types.Level]FieldStyle, len(s.Levels)+1)
	for k, v := range s.Levels {
		levels[k] = v
	}
	levels[l] = fs
	s.Levels = levels
	return s
}
