package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTamilDate(t *testing.T) {
	parsed := ParseTamilDate("26 ஜூன், 2025")
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC), *parsed)

	parsed = ParseTamilDate("1 ஜனவரி, 2024")
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *parsed)

	assert.Nil(t, ParseTamilDate(""))
	assert.Nil(t, ParseTamilDate("நேற்று"))
	assert.Nil(t, ParseTamilDate("26-06-2025"))
}

func TestParseISOTime(t *testing.T) {
	parsed := ParseISOTime("2025-06-26T09:30:00Z")
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2025, 6, 26, 9, 30, 0, 0, time.UTC), *parsed)

	// Offset-less values, as emitted by some sites
	parsed = ParseISOTime("2025-06-26T09:30:00")
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2025, 6, 26, 9, 30, 0, 0, time.UTC), *parsed)

	parsed = ParseISOTime("2025-06-26T15:00:00+05:30")
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2025, 6, 26, 9, 30, 0, 0, time.UTC), *parsed)

	parsed = ParseISOTime("2025-06-26")
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC), *parsed)

	assert.Nil(t, ParseISOTime(""))
	assert.Nil(t, ParseISOTime("not a date"))
}

func TestParseDataDatestring(t *testing.T) {
	parsed := ParseDataDatestring("2025-06-26 12:15:00")
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2025, 6, 26, 12, 15, 0, 0, time.UTC), *parsed)

	assert.Nil(t, ParseDataDatestring(""))
	assert.Nil(t, ParseDataDatestring("26/06/2025"))
}
