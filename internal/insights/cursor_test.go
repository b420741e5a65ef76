package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauv0809/tt-ratings/internal/store"
)

func TestParseRange(t *testing.T) {
	assert.Equal(t, Range3M, ParseRange("3m"))
	assert.Equal(t, RangeAll, ParseRange(" ALL "))
	assert.Equal(t, DefaultRange, ParseRange(""))
	assert.Equal(t, DefaultRange, ParseRange("5y"))
}

func TestRangeSince(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Nil(t, RangeAll.Since(now))
	since := Range6M.Since(now)
	require.NotNil(t, since)
	assert.True(t, time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC).Equal(*since))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, clampLimit(0))
	assert.Equal(t, 10, clampLimit(10))
	assert.Equal(t, MaxLimit, clampLimit(1000))
}

func TestCursorRoundTrip(t *testing.T) {
	in := store.HistoryCursor{EventDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), EventID: 100}
	encoded, err := encodeCursor(in)
	require.NoError(t, err)
	assert.NotContains(t, *encoded, "=")

	var out store.HistoryCursor
	require.NoError(t, decodeCursor(*encoded, &out))
	assert.True(t, in.EventDate.Equal(out.EventDate))
	assert.Equal(t, in.EventID, out.EventID)

	assert.ErrorIs(t, decodeCursor("bm90LWpzb24", &out), ErrInvalidCursor)
}

func TestConfidence(t *testing.T) {
	v := func(i int) *int { return &i }
	assert.Equal(t, "unknown", Confidence(nil))
	assert.Equal(t, "high", Confidence(v(60)))
	assert.Equal(t, "medium", Confidence(v(61)))
	assert.Equal(t, "medium", Confidence(v(130)))
	assert.Equal(t, "low", Confidence(v(131)))
}
