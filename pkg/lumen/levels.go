package lumen

import (
	"github.com/wayneeseguin/lumen/pkg/types"
)

// Level is a message severity. Levels compare as integers.
type Level = types.Level

// Log levels
const (
	LevelTrace    = types.LevelTrace
	LevelDebug    = types.LevelDebug
	LevelInfo     = types.LevelInfo
	LevelDelete   = types.LevelDelete // used by Destructor
	LevelSuccess  = types.LevelSuccess
	LevelWarning  = types.LevelWarning
	LevelError    = types.LevelError
	LevelCritical = types.LevelCritical
)

// DefaultLevel is the minimum level of a logger created without WithLevel.
const DefaultLevel = LevelInfo

// ParseLevel converts a level name such as "DEBUG" to a Level.
func ParseLevel(name string) (Level, error) {
	return types.ParseLevel(name)
}

// Levels returns every level in ascending order.
func Levels() []Level {
	return types.Levels()
}
