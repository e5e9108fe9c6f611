package repository

// Interval represents candle resolution buckets supported by the exchange.
type Interval string

const (
	IV1m  Interval = "1m"
	IV5m  Interval = "5m"
	IV15m Interval = "15m"
	IV1h  Interval = "1h"
)

// IsValidInterval returns true if iv is a supported candle interval.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case IV1m, IV5m, IV15m, IV1h:
		return true
	default:
		return false
	}
}

// DefaultInterval returns the default candle interval.
func DefaultInterval() Interval { return IV5m }

// NormalizeInterval converts a raw string to a valid interval (or default).
func NormalizeInterval(s string) Interval {
	if s == "" {
		return DefaultInterval()
	}
	iv := Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return DefaultInterval()
}
