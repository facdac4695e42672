package formatters

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wayneeseguin/lumen/pkg/types"
)

func TestColorize(t *testing.T) {
	out := Colorize("hello", FieldStyle{Foreground: ColorRed, Font: FontBold})
	assert.True(t, HasANSI(out))
	assert.Contains(t, out, "hello")
	assert.Equal(t, "hello", StripANSI(out))

	assert.Equal(t, "plain", Colorize("plain", FieldStyle{}))
	assert.Equal(t, "", Colorize("", FieldStyle{Foreground: ColorRed}))
}

func TestStripANSI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"\x1b[1;31mred\x1b[0m", "red"},
		{"no codes", "no codes"},
		{"\x1b[32ma\x1b[0m \x1b[33mb\x1b[0m", "a b"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripANSI(tt.in))
	}
	assert.False(t, HasANSI("plain"))
}

func TestStyleLevelFallback(t *testing.T) {
	var empty Style
	for _, l := range types.Levels() {
		assert.Equal(t, defaultLevelStyles[l], empty.Level(l), l.String())
	}

	custom := DefaultStyle().WithLevel(types.LevelInfo, FieldStyle{Foreground: ColorGreen})
	assert.Equal(t, ColorGreen, custom.Level(types.LevelInfo).Foreground)
	// the source style is left untouched
	assert.Equal(t, ColorWhite, DefaultStyle().Level(types.LevelInfo).Foreground)
}

func TestFieldStyleAttributes(t *testing.T) {
	assert.Empty(t, FieldStyle{}.attributes())
	assert.Len(t, FieldStyle{Foreground: ColorMagenta, Font: FontBold, Background: ColorRed}.attributes(), 3)
	assert.Len(t, FieldStyle{Font: FontFaded}.attributes(), 1)
}
