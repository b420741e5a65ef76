package insights

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ParseRange reads a range name. Unknown names fall back to DefaultRange.
func ParseRange(raw string) Range {
	switch r := Range(strings.ToLower(strings.TrimSpace(raw))); r {
	case Range3M, Range6M, Range12M, RangeAll:
		return r
	default:
		return DefaultRange
	}
}

// Since returns the start of the window ending at now, or nil for RangeAll.
func (r Range) Since(now time.Time) *time.Time {
	var months int
	switch r {
	case Range3M:
		months = 3
	case Range6M:
		months = 6
	case RangeAll:
		return nil
	default:
		months = 12
	}
	since := now.UTC().AddDate(0, -months, 0)
	return &since
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

func encodeCursor(v any) (*string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cursor: %w", err)
	}
	s := base64.RawURLEncoding.EncodeToString(raw)
	return &s, nil
}

func decodeCursor(cursor string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(cursor, "="))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return nil
}
