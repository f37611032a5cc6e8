// Package forecast extrapolates cumulative VWAP value with a two-point
// rate model. Deliberately not a regression: the last two samples carry
// the trend, recency beats smoothing.
package forecast

import (
	"sort"

	"github.com/supneo2025-ops/vwap-prediction/internal/domain/models"
)

// Predictor extrapolates the current state to each configured horizon.
type Predictor struct {
	horizons []int // minutes, sorted ascending
}

// New creates a predictor. A nil or empty horizon list falls back to the
// production default of a single 15-minute horizon.
func New(horizonsMinutes []int) *Predictor {
	if len(horizonsMinutes) == 0 {
		horizonsMinutes = []int{15}
	}
	horizons := make([]int, len(horizonsMinutes))
	copy(horizons, horizonsMinutes)
	sort.Ints(horizons)
	return &Predictor{horizons: horizons}
}

// Horizons returns the configured horizons in minutes, ascending.
func (p *Predictor) Horizons() []int {
	return p.horizons
}

// Rates derives the instantaneous per-minute rate from the last two
// history points. history must already end with the current state. With
// fewer than two points, or a zero time delta, the rate is zero for all
// three series.
func Rates(history []models.HistoryPoint) models.RateTriple {
	if len(history) < 2 {
		return models.RateTriple{}
	}
	last := history[len(history)-1]
	prev := history[len(history)-2]

	deltaMin := float64(last.Timestamp-prev.Timestamp) / 60000.0
	if deltaMin == 0 {
		return models.RateTriple{Timestamp: last.Timestamp}
	}

	return models.RateTriple{
		Timestamp: last.Timestamp,
		BU:        (last.BU - prev.BU) / deltaMin,
		SD:        (last.SD - prev.SD) / deltaMin,
		Net:       (last.Net - prev.Net) / deltaMin,
	}
}

// Predict returns one prediction per horizon: forecast = current +
// rate*horizon, per series, unclamped. Net can swing either way and
// extrapolation is inherently unbounded, so negative or shrinking
// forecasts are valid outputs.
func (p *Predictor) Predict(current models.VWAPState, history []models.HistoryPoint) []models.Prediction {
	rates := Rates(history)

	predictions := make([]models.Prediction, 0, len(p.horizons))
	for _, h := range p.horizons {
		predictions = append(predictions, models.Prediction{
			Timestamp:  current.Timestamp,
			HorizonMin: h,
			BU:         current.BU + rates.BU*float64(h),
			SD:         current.SD + rates.SD*float64(h),
			Net:        current.Net + rates.Net*float64(h),
		})
	}
	return predictions
}
