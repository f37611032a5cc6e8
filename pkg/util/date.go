package util

import (
	"fmt"
	"time"
)

// DayLayout is the trading-day format used in capture file names and the
// control API.
const DayLayout = "2006-01-02"

// ParseDay parses a strict YYYY-MM-DD trading day. Anything else errors,
// including valid dates in other layouts; day strings become file names,
// so no leniency.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: want YYYY-MM-DD", s)
	}
	if t.Format(DayLayout) != s {
		return time.Time{}, fmt.Errorf("invalid day %q: want YYYY-MM-DD", s)
	}
	return t, nil
}
