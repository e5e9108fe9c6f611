package util

import (
	"strconv"
	"time"
)

// periodSeconds maps user-facing period strings to their window length.
var periodSeconds = map[string]int64{
	"1m":  60,
	"5m":  300,
	"10m": 600,
	"15m": 900,
	"30m": 1800,
	"1h":  3600,
	"2h":  7200,
	"6h":  21600,
	"12h": 43200,
	"24h": 86400,
}

// PeriodDuration converts a period string ("5m", "1h", ...) into a duration.
// Unknown periods fall back to one hour.
func PeriodDuration(s string) time.Duration {
	if sec, ok := periodSeconds[s]; ok {
		return time.Duration(sec) * time.Second
	}
	return time.Hour
}

// IsValidPeriod returns true if s is a recognized period string.
func IsValidPeriod(s string) bool {
	_, ok := periodSeconds[s]
	return ok
}

// HourBucket truncates t to the wall-clock hour it falls into.
func HourBucket(t time.Time) time.Time {
	return t.Truncate(time.Hour)
}

// ParseUnixSeconds parses a decimal unix-seconds string, possibly with a
// fractional part, into a time. Returns (zero, false) on garbage input.
func ParseUnixSeconds(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		sec := int64(f)
		nsec := int64((f - float64(sec)) * 1e9)
		return time.Unix(sec, nsec), true
	}
	return time.Time{}, false
}
