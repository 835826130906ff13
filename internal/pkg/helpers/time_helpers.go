package helpers

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// DateLayout is the date-only format used by query parameters and reports
const DateLayout = "2006-01-02"

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseDateParam parses an optional YYYY-MM-DD value. endOfDay moves the
// result to the last instant of that day so it can be used as an inclusive bound.
func ParseDateParam(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// RoundMoney rounds to two decimals
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
