package models

// VWAPState is a snapshot of the detector's cumulative sums at a given
// timestamp. Immutable once produced.
type VWAPState struct {
	Timestamp int64   `json:"timestamp"` // ms
	BU        float64 `json:"bu_current"`
	SD        float64 `json:"sd_current"`
	Net       float64 `json:"busd_current"` // BU - SD
}

// HistoryPoint is the reduced form of VWAPState retained at prediction
// cadence only, so predictor input stays bounded.
type HistoryPoint struct {
	Timestamp int64   `json:"timestamp"` // ms, compressed timeline
	BU        float64 `json:"bu_current"`
	SD        float64 `json:"sd_current"`
	Net       float64 `json:"busd_current"`
}

// Point reduces a state snapshot to a history point.
func (s VWAPState) Point() HistoryPoint {
	return HistoryPoint{Timestamp: s.Timestamp, BU: s.BU, SD: s.SD, Net: s.Net}
}

// Prediction is one extrapolated value set for a single horizon.
type Prediction struct {
	Timestamp  int64   `json:"timestamp"` // ms, when the prediction was made
	HorizonMin int     `json:"prediction_horizon_min"`
	BU         float64 `json:"bu_pred"`
	SD         float64 `json:"sd_pred"`
	Net        float64 `json:"busd_pred"`
}

// RateTriple is the instantaneous per-minute accumulation rate, published
// alongside the prediction table for display.
type RateTriple struct {
	Timestamp int64   `json:"timestamp"` // ms
	BU        float64 `json:"bu_rate"`
	SD        float64 `json:"sd_rate"`
	Net       float64 `json:"busd_rate"`
}

// HorizonForecast is the per-horizon slice of a published row.
type HorizonForecast struct {
	HorizonMin   int     `json:"horizon_min"`
	BU           float64 `json:"bu_pred"`
	SD           float64 `json:"sd_pred"`
	Net          float64 `json:"busd_pred"`
	PredDatetime string  `json:"pred_datetime"` // exchange local, original timeline + horizon
}

// PublishedRow is one cadence tick's output: current state plus forecasts
// per horizon. Datetime fields are formatted in exchange local time from
// the original (uncompressed) timestamp.
type PublishedRow struct {
	Timestamp     int64             `json:"timestamp"`           // ms, original
	EffectiveTime int64             `json:"effective_timestamp"` // ms, compressed
	Datetime      string            `json:"datetime"`
	BU            float64           `json:"bu_current"`
	SD            float64           `json:"sd_current"`
	Net           float64           `json:"busd_current"`
	Forecasts     []HorizonForecast `json:"forecasts"`
}
