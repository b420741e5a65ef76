package ratings

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRating(t *testing.T) {
	t.Run("mean and stdev around zero width spaces", func(t *testing.T) {
		r := ParseRating("1523\u200B±\u200B87")
		require.NotNil(t, r.Mean)
		require.NotNil(t, r.StDev)
		assert.Equal(t, 1523, *r.Mean)
		assert.Equal(t, 87, *r.StDev)
	})

	t.Run("bare mean", func(t *testing.T) {
		r := ParseRating("1523")
		require.NotNil(t, r.Mean)
		assert.Equal(t, 1523, *r.Mean)
		assert.Nil(t, r.StDev)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, Rating{}, ParseRating(""))
		assert.Equal(t, Rating{}, ParseRating(" \u200B "))
	})

	t.Run("no digits", func(t *testing.T) {
		assert.Equal(t, Rating{}, ParseRating("n/a"))
	})
}

func TestParseInt(t *testing.T) {
	cases := map[string]int{
		"":      0,
		"  12 ": 12,
		"-7":    -7,
		"3.4":   3,
		"3.5":   4,
		"-2.5":  -2,
		"-12.5": -12,
		"-2.6":  -3,
		"abc":   0,
		"1,523": 0,
		"NaN":   0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseInt(in), "input %q", in)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-09", "03/09/2024", "3/9/2024", "Mar 9, 2024", "March 9, 2024", "9-Mar-2024", " 2024-03-09 "} {
		got, err := ParseDate(in)
		require.NoError(t, err, "input %q", in)
		assert.True(t, want.Equal(got), "input %q gave %s", in, got)
	}

	_, err := ParseDate("yesterday")
	assert.Error(t, err)

	assert.Nil(t, ParseOptionalDate(""))
	assert.Nil(t, ParseOptionalDate("not a date"))
	require.NotNil(t, ParseOptionalDate("2024-03-09"))
}

func TestParsePlayerID(t *testing.T) {
	assert.Equal(t, int64(12345), parsePlayerID("PlayerProfile.php?PlayerID=12345"))
	assert.Equal(t, int64(77), parsePlayerID("/x.php?playerid=77&foo=bar"))
	assert.Equal(t, int64(0), parsePlayerID("ClubInfo.php?ClubID=3"))
}

func TestParseEventSummary_RoundsNegativeHalvesUp(t *testing.T) {
	csv := "PlayerID,PlayerName,InitialMean,InitialStDev,PointChange,FinalMean,FinalStDev\n" +
		"42,J. Smith,1500.5,80,-12.5,1488,79.5\n"
	rows, err := parseEventSummary(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1501, rows[0].InitialMean)
	assert.Equal(t, -12, rows[0].PointChange)
	assert.Equal(t, 80, rows[0].FinalStDev)
}
