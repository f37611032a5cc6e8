package usecase

import (
	"context"
	"time"

	"github.com/supneo2025-ops/vwap-prediction/internal/domain/models"
	domrepo "github.com/supneo2025-ops/vwap-prediction/internal/domain/repository"
	"github.com/supneo2025-ops/vwap-prediction/internal/forecast"
	"github.com/supneo2025-ops/vwap-prediction/internal/session"
	applogger "github.com/supneo2025-ops/vwap-prediction/pkg/logger"
)

// RowPublisher turns cadence-tick snapshots into published rows. It owns
// the append-only row table and the prediction-cadence history that feeds
// the rate model. Publish failures are logged and skipped; the sink serves
// last-known-good until the next tick.
//
// The full table is republished on every tick because the sink's contract
// is append-by-replace. That is O(n^2) over a day; the per-tick archive
// below is the append-only log that makes the cost avoidable for readers
// that can consume deltas.
type RowPublisher struct {
	sink      domrepo.ResultSink
	archive   domrepo.Archiver // nil disables archival
	clock     *session.Clock
	predictor *forecast.Predictor
	metrics   domrepo.Metrics
	logger    *applogger.Logger

	history   []models.HistoryPoint
	rows      []models.PublishedRow
	published int
}

// NewRowPublisher creates a publisher.
func NewRowPublisher(
	sink domrepo.ResultSink,
	archive domrepo.Archiver,
	clock *session.Clock,
	predictor *forecast.Predictor,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
) *RowPublisher {
	return &RowPublisher{
		sink:      sink,
		archive:   archive,
		clock:     clock,
		predictor: predictor,
		metrics:   metrics,
		logger:    logger,
	}
}

// PublishTick builds a row from the current state, extrapolates it per
// horizon, and pushes table, latest projection, and rates to the sink.
// state carries the compressed timestamp; rawMillis is the original
// exchange time used for every display field.
func (p *RowPublisher) PublishTick(ctx context.Context, state models.VWAPState, rawMillis int64) {
	start := time.Now()

	// history must end with the current state before rate derivation
	p.history = append(p.history, state.Point())
	predictions := p.predictor.Predict(state, p.history)
	rates := forecast.Rates(p.history)

	row := models.PublishedRow{
		Timestamp:     rawMillis,
		EffectiveTime: state.Timestamp,
		Datetime:      p.clock.FormatLocal(rawMillis),
		BU:            state.BU,
		SD:            state.SD,
		Net:           state.Net,
		Forecasts:     make([]models.HorizonForecast, 0, len(predictions)),
	}
	for _, pred := range predictions {
		futureMillis := rawMillis + int64(pred.HorizonMin)*60_000
		row.Forecasts = append(row.Forecasts, models.HorizonForecast{
			HorizonMin:   pred.HorizonMin,
			BU:           pred.BU,
			SD:           pred.SD,
			Net:          pred.Net,
			PredDatetime: p.clock.FormatLocal(futureMillis),
		})
	}
	p.rows = append(p.rows, row)

	if err := p.sink.PublishRows(ctx, p.rows); err != nil {
		p.metrics.RecordPublishError("rows")
		p.logger.Error("publish rows failed", applogger.Error(err), applogger.Int("rows", len(p.rows)))
	}
	if err := p.sink.PublishLatest(ctx, row); err != nil {
		p.metrics.RecordPublishError("latest")
		p.logger.Error("publish latest failed", applogger.Error(err))
	}
	if err := p.sink.PublishRates(ctx, rates); err != nil {
		p.metrics.RecordPublishError("rates")
		p.logger.Error("publish rates failed", applogger.Error(err))
	}
	if p.archive != nil {
		if err := p.archive.Archive(ctx, row); err != nil {
			p.metrics.RecordPublishError("archive")
			p.logger.Warn("archive insert failed", applogger.Error(err))
		}
	}

	p.published++
	p.metrics.RecordPrediction()
	p.metrics.RecordLatency("publish_tick", time.Since(start).Seconds())

	if p.published%10 == 0 {
		p.logger.Debug("published prediction batch",
			applogger.Int("batch", p.published),
			applogger.Float64("busd_current", state.Net),
			applogger.Int("rows", len(p.rows)),
		)
	}
}

// Published returns the number of cadence ticks published so far.
func (p *RowPublisher) Published() int {
	return p.published
}

// Rows returns the accumulated table; test hook.
func (p *RowPublisher) Rows() []models.PublishedRow {
	return p.rows
}
