package ratings

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ratingSpaces  = regexp.MustCompile(`[\s\x{200B}]+`)
	ratingPair    = regexp.MustCompile(`(\d+)\s*±\s*(\d+)`)
	ratingNumeric = regexp.MustCompile(`(\d+)`)
	playerIDParam = regexp.MustCompile(`(?i)PlayerID=(\d+)`)
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
}

var errUnknownDate = errors.New("no known date layout matched")

// ParseRating reads a roster rating cell such as "1523±87". The source
// sometimes pads the ± with zero-width spaces.
func ParseRating(text string) Rating {
	cleaned := strings.TrimSpace(ratingSpaces.ReplaceAllString(text, " "))
	if cleaned == "" {
		return Rating{}
	}
	if m := ratingPair.FindStringSubmatch(cleaned); m != nil {
		mean, stdev := ParseInt(m[1]), ParseInt(m[2])
		return Rating{Mean: &mean, StDev: &stdev}
	}
	if m := ratingNumeric.FindStringSubmatch(cleaned); m != nil {
		mean := ParseInt(m[1])
		return Rating{Mean: &mean}
	}
	return Rating{}
}

// ParseInt leniently reads a numeric cell, rounding to the nearest integer.
// Anything unreadable yields 0.
func ParseInt(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Floor(f + 0.5))
}

// ParseID reads an external identifier using the lenient integer rules.
func ParseID(value string) int64 {
	return int64(ParseInt(value))
}

// ParseDate parses a date in one of the layouts the source emits. The result is in UTC.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errUnknownDate
}

// ParseOptionalDate is ParseDate for optional cells: empty or invalid input yields nil.
func ParseOptionalDate(value string) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	t, err := ParseDate(value)
	if err != nil {
		return nil
	}
	return &t
}

func parsePlayerID(href string) int64 {
	m := playerIDParam.FindStringSubmatch(href)
	if m == nil {
		return 0
	}
	return ParseID(m[1])
}
