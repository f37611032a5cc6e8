// Package session maps exchange wall-clock timestamps onto a continuous
// intraday timeline with the midday trading recess removed. The compressed
// timeline is used for replay pacing and rate arithmetic only; display
// always uses the original timestamp.
package session

import (
	"fmt"
	"time"

	"github.com/supneo2025-ops/vwap-prediction/pkg/config"
)

// Clock holds the fixed daily recess window and cutoff for one exchange.
type Clock struct {
	loc        *time.Location
	lunchStart int // minutes since local midnight
	lunchEnd   int
	cutoff     int
}

// NewClock builds a Clock from HH:MM strings and an IANA timezone.
func NewClock(tz, lunchStart, lunchEnd, cutoff string) (*Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	start, err := config.ParseHHMM(lunchStart)
	if err != nil {
		return nil, fmt.Errorf("lunch start: %w", err)
	}
	end, err := config.ParseHHMM(lunchEnd)
	if err != nil {
		return nil, fmt.Errorf("lunch end: %w", err)
	}
	if end <= start {
		return nil, fmt.Errorf("lunch recess must end after it starts")
	}
	cut, err := config.ParseHHMM(cutoff)
	if err != nil {
		return nil, fmt.Errorf("cutoff: %w", err)
	}
	return &Clock{loc: loc, lunchStart: start, lunchEnd: end, cutoff: cut}, nil
}

// FromConfig builds a Clock from the replay and session config sections.
func FromConfig(cfg *config.Config) (*Clock, error) {
	return NewClock(cfg.Replay.Timezone, cfg.Session.LunchStart, cfg.Session.LunchEnd, cfg.Replay.CutoffTime)
}

// recessBounds returns the recess start and end instants, in ms, for the
// trading day containing ts.
func (c *Clock) recessBounds(tsMillis int64) (int64, int64) {
	t := time.UnixMilli(tsMillis).In(c.loc)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
	start := midnight.Add(time.Duration(c.lunchStart) * time.Minute).UnixMilli()
	end := midnight.Add(time.Duration(c.lunchEnd) * time.Minute).UnixMilli()
	return start, end
}

// Compress maps a wall-clock timestamp (ms) onto the recess-free timeline:
// at or before recess start it passes through, inside the recess it
// collapses to the recess start, after the recess it shifts earlier by the
// full recess duration. Must be applied exactly once per event; callers
// keep the original timestamp alongside the compressed one.
func (c *Clock) Compress(tsMillis int64) int64 {
	start, end := c.recessBounds(tsMillis)
	switch {
	case tsMillis <= start:
		return tsMillis
	case tsMillis < end:
		return start
	default:
		return tsMillis - (end - start)
	}
}

// RecessDuration returns the length of the daily recess.
func (c *Clock) RecessDuration() time.Duration {
	return time.Duration(c.lunchEnd-c.lunchStart) * time.Minute
}

// AfterCutoff reports whether the original (uncompressed) timestamp falls
// at or past the daily processing cutoff in exchange local time.
func (c *Clock) AfterCutoff(tsMillis int64) bool {
	t := time.UnixMilli(tsMillis).In(c.loc)
	return t.Hour()*60+t.Minute() >= c.cutoff
}

// Location returns the exchange timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// FormatLocal renders a millisecond timestamp as an exchange-local
// datetime string for published rows.
func (c *Clock) FormatLocal(tsMillis int64) string {
	return time.UnixMilli(tsMillis).In(c.loc).Format("2006-01-02 15:04:05.000 -0700")
}
