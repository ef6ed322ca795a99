package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(GranuleRunning))
	assert.False(t, IsTerminal(GranuleQueued))
	assert.True(t, IsTerminal(GranuleCompleted))
	assert.True(t, IsTerminal(GranuleFailed))
	// Any unrecognized status counts as terminal.
	assert.True(t, IsTerminal(GranuleStatus("archived")))
}

func TestNormalizeTime(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	at := time.Date(2026, 8, 30, 9, 30, 0, 999999999, loc)

	normalized := NormalizeTime(at)
	assert.Equal(t, time.UTC, normalized.Location())
	assert.Equal(t, 999000000, normalized.Nanosecond())
	assert.True(t, normalized.Equal(at.Truncate(time.Millisecond)))
}
