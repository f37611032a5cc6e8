// Package detect flags algorithmic VWAP execution by spotting repeated
// same-size trades per symbol inside a sliding time window.
package detect

import (
	"github.com/supneo2025-ops/vwap-prediction/internal/domain/models"
)

// PatternKey identifies a candidate repeating lot size.
type PatternKey struct {
	Symbol string
	Volume int64
}

// Config holds detector tuning.
type Config struct {
	WindowSeconds   int   // lookback for repetition (default 300)
	MinOccurrences  int   // repetitions required before flagging (default 5)
	VolumeThreshold int64 // events at or below this volume are noise (default 200)
	CleanupInterval int   // sweep windows every N accepted events (default 100)
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		WindowSeconds:   300,
		MinOccurrences:  5,
		VolumeThreshold: 200,
		CleanupInterval: 100,
	}
}

// Detector keeps per-(symbol, volume, side) windows and two cumulative
// sums. Single-owner state: one goroutine calls AddBubble, nothing else
// touches it.
type Detector struct {
	windowMillis    int64
	minOccurrences  int
	volumeThreshold int64
	cleanupInterval int

	buWindows map[PatternKey][]*models.Bubble
	sdWindows map[PatternKey][]*models.Bubble

	buSum float64
	sdSum float64

	processed int
}

// New creates a detector. Zero or negative config fields fall back to the
// defaults.
func New(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = def.WindowSeconds
	}
	if cfg.MinOccurrences <= 0 {
		cfg.MinOccurrences = def.MinOccurrences
	}
	if cfg.VolumeThreshold <= 0 {
		cfg.VolumeThreshold = def.VolumeThreshold
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	return &Detector{
		windowMillis:    int64(cfg.WindowSeconds) * 1000,
		minOccurrences:  cfg.MinOccurrences,
		volumeThreshold: cfg.VolumeThreshold,
		cleanupInterval: cfg.CleanupInterval,
		buWindows:       make(map[PatternKey][]*models.Bubble),
		sdWindows:       make(map[PatternKey][]*models.Bubble),
	}
}

// AddBubble classifies one event and returns the state snapshot after it.
// Total: never errors; unknown sides pass through with an unchanged
// snapshot.
//
// The threshold check runs BEFORE the event is appended to its window, so
// the event that brings the window up to minOccurrences is itself not
// flagged - accumulation starts with the occurrence after the threshold is
// met. That off-by-one is intentional and locked down by tests.
func (d *Detector) AddBubble(b *models.Bubble) models.VWAPState {
	if b.Volume <= d.volumeThreshold {
		return d.state(b.Timestamp)
	}

	var windows map[PatternKey][]*models.Bubble
	switch b.Side {
	case models.SideBuyUp:
		windows = d.buWindows
	case models.SideSellDown:
		windows = d.sdWindows
	default:
		return d.state(b.Timestamp)
	}

	key := PatternKey{Symbol: b.Symbol, Volume: b.Volume}
	window := windows[key]

	if len(window) >= d.minOccurrences {
		b.IsVWAP = true
		if b.Side == models.SideBuyUp {
			d.buSum += b.Notional()
		} else {
			d.sdSum += b.Notional()
		}
	}

	windows[key] = append(window, b)

	d.processed++
	if d.processed%d.cleanupInterval == 0 {
		d.sweep(b.Timestamp)
	}

	return d.state(b.Timestamp)
}

// Processed returns the number of accepted events seen so far.
func (d *Detector) Processed() int {
	return d.processed
}

// State returns the current snapshot at the given timestamp without
// classifying anything.
func (d *Detector) State(tsMillis int64) models.VWAPState {
	return d.state(tsMillis)
}

// WindowLen reports the live occupancy of one window; test hook.
func (d *Detector) WindowLen(key PatternKey, side models.Side) int {
	if side == models.SideBuyUp {
		return len(d.buWindows[key])
	}
	return len(d.sdWindows[key])
}

func (d *Detector) state(tsMillis int64) models.VWAPState {
	return models.VWAPState{
		Timestamp: tsMillis,
		BU:        d.buSum,
		SD:        d.sdSum,
		Net:       d.buSum - d.sdSum,
	}
}

// sweep drops events older than the window from every key and deletes
// windows left empty. Amortized: between sweeps a window may transiently
// hold stale entries, which only ever over-counts occupancy, never the
// sums.
func (d *Detector) sweep(nowMillis int64) {
	cutoff := nowMillis - d.windowMillis
	sweepSide(d.buWindows, cutoff)
	sweepSide(d.sdWindows, cutoff)
}

func sweepSide(windows map[PatternKey][]*models.Bubble, cutoff int64) {
	for key, window := range windows {
		i := 0
		for i < len(window) && window[i].Timestamp < cutoff {
			i++
		}
		if i == 0 {
			continue
		}
		if i == len(window) {
			delete(windows, key)
			continue
		}
		remaining := make([]*models.Bubble, len(window)-i)
		copy(remaining, window[i:])
		windows[key] = remaining
	}
}
