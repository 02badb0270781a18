package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNewsTimestamp_FullDate(t *testing.T) {
	got, ok := parseNewsTimestamp("Mar-02-26 04:15PM", time.Time{})
	require.True(t, ok)

	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 2, got.Day())
	assert.Equal(t, 16, got.Hour())
	assert.Equal(t, 15, got.Minute())
}

func TestParseNewsTimestamp_TimeOnlyInheritsDate(t *testing.T) {
	running := time.Date(2026, 3, 2, 16, 15, 0, 0, time.UTC)

	got, ok := parseNewsTimestamp("09:30AM", running)
	require.True(t, ok)

	assert.Equal(t, running.Year(), got.Year())
	assert.Equal(t, running.Month(), got.Month())
	assert.Equal(t, running.Day(), got.Day())
	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, 30, got.Minute())
}

func TestParseNewsTimestamp_TimeOnlyWithoutRunningDate(t *testing.T) {
	_, ok := parseNewsTimestamp("09:30AM", time.Time{})
	assert.False(t, ok)
}

func TestParseNewsTimestamp_Garbage(t *testing.T) {
	_, ok := parseNewsTimestamp("not a date", time.Time{})
	assert.False(t, ok)

	_, ok = parseNewsTimestamp("", time.Time{})
	assert.False(t, ok)
}

func TestMatchesAny(t *testing.T) {
	terms := categoryTerms["analyst"]

	assert.True(t, matchesAny("Big Bank Upgrades Shares to Buy", terms))
	assert.True(t, matchesAny("Price Target Raised to $250", terms))
	assert.False(t, matchesAny("Quarterly revenue beats estimates", terms))
}
