package types

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelOrdering(t *testing.T) {
	levels := Levels()
	for i := 1; i < len(levels); i++ {
		assert.Less(t, levels[i-1], levels[i], "%s should sort before %s", levels[i-1], levels[i])
	}
	assert.Equal(t, Level(24), LevelDelete)
	assert.Greater(t, LevelDelete, LevelInfo)
	assert.Less(t, LevelDelete, LevelSuccess)
}

func TestParseLevel(t *testing.T) {
	for _, l := range Levels() {
		parsed, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
	}

	_, err := ParseLevel("info")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLevel))

	_, err = ParseLevel("VERBOSE")
	assert.True(t, errors.Is(err, ErrUnknownLevel))
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "WARNING", LevelWarning.String())
	assert.Equal(t, "LEVEL(7)", Level(7).String())
	assert.False(t, Level(7).Valid())
}

func TestLevelText(t *testing.T) {
	text, err := LevelCritical.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "CRITICAL", string(text))

	var l Level
	require.NoError(t, l.UnmarshalText([]byte("SUCCESS")))
	assert.Equal(t, LevelSuccess, l)

	assert.Error(t, l.UnmarshalText([]byte("nope")))
	_, err = Level(3).MarshalText()
	assert.Error(t, err)
}

func TestCallSiteString(t *testing.T) {
	cs := CallSite{Module: "example.com/app/server", Function: "(*Server).Start", Line: 42}
	assert.Equal(t, "example.com/app/server:(*Server).Start:42", cs.String())
	assert.False(t, cs.IsZero())
	assert.True(t, CallSite{}.IsZero())
}
