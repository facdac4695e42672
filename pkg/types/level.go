package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// Level is an ordered log severity. Numeric values are stable and are
// persisted in level caches and scratch files, so they must never change.
type Level int

const (
	LevelTrace    Level = 5
	LevelDebug    Level = 10
	LevelInfo     Level = 20
	LevelDelete   Level = 24 // ephemeral destructor messages
	LevelSuccess  Level = 25
	LevelWarning  Level = 30
	LevelError    Level = 40
	LevelCritical Level = 50
)

// ErrUnknownLevel is returned when a level name or value is not recognized.
var ErrUnknownLevel = errors.New("unknown level")

var levelNames = map[Level]string{
	LevelTrace:    "TRACE",
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelDelete:   "DELETE",
	LevelSuccess:  "SUCCESS",
	LevelWarning:  "WARNING",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
}

var levelsByName = func() map[string]Level {
	m := make(map[string]Level, len(levelNames))
	for l, n := range levelNames {
		m[n] = l
	}
	return m
}()

// Levels returns every level in ascending order.
func Levels() []Level {
	return []Level{
		LevelTrace,
		LevelDebug,
		LevelInfo,
		LevelDelete,
		LevelSuccess,
		LevelWarning,
		LevelError,
		LevelCritical,
	}
}

// String returns the level name, e.g. "WARNING".
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// ParseLevel converts a level name to a Level. Names are case-sensitive
// ("INFO", not "info").
func ParseLevel(name string) (Level, error) {
	if l, ok := levelsByName[name]; ok {
		return l, nil
	}
	return 0, errors.Wrapf(ErrUnknownLevel, "%q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, errors.Wrapf(ErrUnknownLevel, "%d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
