package models

// Side is the aggressor side of a matched lot.
type Side string

const (
	SideBuyUp    Side = "bu"
	SideSellDown Side = "sd"
)

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == SideBuyUp || s == SideSellDown
}

// Bubble is a single matched trade decoded from the HOSE BUSD stream.
//
// Timestamp is the working timestamp in milliseconds; the replay loop
// overwrites it with the session-compressed value before detection.
// RawTimestamp always keeps the original exchange timestamp for display
// and for the cutoff check - the two must never be conflated.
type Bubble struct {
	Symbol       string
	Volume       int64
	Price        float64
	ServerTime   int64 // microseconds, detection-grade
	Timestamp    int64 // milliseconds, working (compressed after normalization)
	RawTimestamp int64 // milliseconds, original exchange time
	Side         Side
	IsVWAP       bool
}

// Notional returns volume*price scaled to billions, the unit every
// cumulative sum is kept in.
func (b *Bubble) Notional() float64 {
	return float64(b.Volume) * b.Price / 1e9
}
