package usecase

import (
	"context"
	"time"

	"github.com/supneo2025-ops/vwap-prediction/internal/detect"
	domrepo "github.com/supneo2025-ops/vwap-prediction/internal/domain/repository"
	"github.com/supneo2025-ops/vwap-prediction/internal/feed"
	"github.com/supneo2025-ops/vwap-prediction/internal/session"
	applogger "github.com/supneo2025-ops/vwap-prediction/pkg/logger"
)

// ReplayConfig holds the orchestrator knobs.
type ReplayConfig struct {
	SpeedMultiplier float64 // 1.0 = real time, higher = faster
	IntervalSeconds int     // prediction cadence in data time
	ProgressEvery   int     // log throughput every N events, 0 disables
}

// Replay drives the pipeline end to end: read, decode, cutoff, compress,
// detect, throttle, predict, publish. Strictly single-threaded: one event
// is fully processed before the next is read; the throttling sleep is the
// only suspension point.
type Replay struct {
	source   domrepo.FeedSource
	detector *detect.Detector
	clock    *session.Clock
	pub      *RowPublisher
	metrics  domrepo.Metrics
	logger   *applogger.Logger

	speed          float64
	intervalMillis int64
	progressEvery  int

	// injectable for tests
	sleep func(time.Duration)

	prevMillis     int64 // compressed, previous event; 0 = none yet
	lastPredMillis int64
	processed      int64
	cutoffLogged   bool
	start          time.Time
}

// NewReplay creates the orchestrator.
func NewReplay(
	source domrepo.FeedSource,
	detector *detect.Detector,
	clock *session.Clock,
	pub *RowPublisher,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	cfg ReplayConfig,
) *Replay {
	if cfg.SpeedMultiplier <= 0 {
		cfg.SpeedMultiplier = 1.0
	}
	if cfg.IntervalSeconds <= 0 {
		cfg.IntervalSeconds = 15
	}
	return &Replay{
		source:         source,
		detector:       detector,
		clock:          clock,
		pub:            pub,
		metrics:        metrics,
		logger:         logger,
		speed:          cfg.SpeedMultiplier,
		intervalMillis: int64(cfg.IntervalSeconds) * 1000,
		progressEvery:  cfg.ProgressEvery,
		sleep:          time.Sleep,
	}
}

// Run consumes the feed until EOF or cancellation, then emits final
// statistics. Decode failures are counted and skipped; nothing in the
// loop can fail the run.
func (r *Replay) Run(ctx context.Context) error {
	r.start = time.Now()
	r.logger.Info("replay started",
		applogger.Float64("speed", r.speed),
		applogger.Int64("prediction_interval_ms", r.intervalMillis),
	)

	lines, errs := r.source.Lines(ctx)
	for {
		select {
		case <-ctx.Done():
			r.finish("interrupted")
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				r.logger.Warn("feed error", applogger.Error(err))
			}
		case line, ok := <-lines:
			if !ok {
				r.finish("eof")
				return nil
			}
			r.processLine(ctx, line)
		}
	}
}

func (r *Replay) processLine(ctx context.Context, line string) {
	b, reason := feed.Decode(line)
	if b == nil {
		r.metrics.RecordReject(reason)
		return
	}

	// the cutoff check uses the original exchange time, never the
	// compressed one
	if r.clock.AfterCutoff(b.RawTimestamp) {
		if !r.cutoffLogged {
			r.logger.Info("daily cutoff reached, dropping remaining events",
				applogger.String("at", r.clock.FormatLocal(b.RawTimestamp)))
			r.cutoffLogged = true
		}
		return
	}

	// compress exactly once; RawTimestamp keeps the display time
	b.Timestamp = r.clock.Compress(b.RawTimestamp)

	state := r.detector.AddBubble(b)
	r.processed++
	r.metrics.RecordBubble(b.Symbol)
	if b.IsVWAP {
		r.metrics.RecordPatternMatch(string(b.Side))
	}
	r.metrics.RecordCumulative("bu", state.BU)
	r.metrics.RecordCumulative("sd", state.SD)

	// timestamp-driven pacing: the data's own gaps decide the sleep, the
	// loop's speed does not
	if r.prevMillis != 0 {
		delta := b.Timestamp - r.prevMillis
		if pause := time.Duration(float64(delta) / r.speed * float64(time.Millisecond)); pause > 0 {
			r.sleep(pause)
		}
	}
	r.prevMillis = b.Timestamp

	// prediction cadence runs on data time, not wall clock
	if b.Timestamp-r.lastPredMillis >= r.intervalMillis {
		r.pub.PublishTick(ctx, state, b.RawTimestamp)
		r.lastPredMillis = b.Timestamp
	}

	if r.progressEvery > 0 && r.processed%int64(r.progressEvery) == 0 {
		elapsed := time.Since(r.start).Seconds()
		rate := 0.0
		if elapsed > 0 {
			rate = float64(r.processed) / elapsed
		}
		r.logger.Info("progress",
			applogger.Int64("bubbles", r.processed),
			applogger.Int("predictions", r.pub.Published()),
			applogger.Float64("bubbles_per_sec", rate),
		)
	}
}

// Processed returns the number of events forwarded to the detector.
func (r *Replay) Processed() int64 {
	return r.processed
}

func (r *Replay) finish(cause string) {
	elapsed := time.Since(r.start).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(r.processed) / elapsed
	}
	r.logger.Info("replay finished",
		applogger.String("cause", cause),
		applogger.Int64("bubbles_processed", r.processed),
		applogger.Int("predictions_generated", r.pub.Published()),
		applogger.Float64("runtime_sec", elapsed),
		applogger.Float64("bubbles_per_sec", rate),
	)
}
