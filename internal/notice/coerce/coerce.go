// Package coerce holds the scalar conversion helpers used by the field
// resolvers. Every function degrades to an explicit absent result on bad
// input; none of them returns an error or panics.
package coerce

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order by ParseFlexibleDate. The feed mixes plain
// dates, local date-times and zoned date-times in the same fields.
var dateLayouts = []string{
	time.DateOnly,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05-07:00",
	"2006-01-02 15:04:05",
}

// ParseFlexibleDate parses an ISO-8601 date or date-time string.
// Returns false on empty or malformed input.
func ParseFlexibleDate(text string) (time.Time, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// DaysBetween returns the signed whole-day difference target - reference.
// Partial days are floored, so a deadline 36 hours away is 1 day and a
// deadline 12 hours past is -1 day.
func DaysBetween(target, reference time.Time) int {
	diff := target.Sub(reference)
	return int(math.Floor(diff.Hours() / 24))
}

// ParseAmount parses an optionally-signed decimal amount string, tolerating
// French decimal commas and grouping spaces. Returns false on empty or
// non-numeric input.
func ParseAmount(text string) (float64, bool) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// CompactNumber formats an amount for message brevity: millions as "2M",
// thousands as "450k", anything below with two decimals. Halves round away
// from zero, so 2 500 000 renders as "3M". Downstream output depends on
// this exact shape, change it only with the message templates.
func CompactNumber(amount float64) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("%dM", int64(math.Round(amount/1_000_000)))
	case amount >= 1_000:
		return fmt.Sprintf("%dk", int64(math.Round(amount/1_000)))
	default:
		return fmt.Sprintf("%.2f", amount)
	}
}
