package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	bubblesTotal    *prometheus.CounterVec
	rejectsTotal    *prometheus.CounterVec
	matchesTotal    *prometheus.CounterVec
	predictionsGen  prometheus.Counter
	publishErrors   *prometheus.CounterVec
	cumulativeValue *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		bubblesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vwap_bubbles_processed_total",
				Help: "Total number of decoded trade events processed",
			},
			[]string{"symbol"},
		),
		rejectsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vwap_decode_rejects_total",
				Help: "Total number of rejected wire records",
			},
			[]string{"reason"},
		),
		matchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vwap_pattern_matches_total",
				Help: "Total number of events flagged as VWAP pattern",
			},
			[]string{"side"},
		),
		predictionsGen: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "vwap_predictions_generated_total",
				Help: "Total number of prediction batches published",
			},
		),
		publishErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vwap_publish_errors_total",
				Help: "Total number of sink publish failures",
			},
			[]string{"kind"},
		),
		cumulativeValue: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vwap_cumulative_billions",
				Help: "Current cumulative VWAP value per side, in billions",
			},
			[]string{"side"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vwap_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordBubble records one processed trade event.
func (r *Recorder) RecordBubble(symbol string) {
	r.bubblesTotal.WithLabelValues(symbol).Inc()
}

// RecordReject records a rejected wire record.
func (r *Recorder) RecordReject(reason string) {
	r.rejectsTotal.WithLabelValues(reason).Inc()
}

// RecordPatternMatch records an event flagged as part of a VWAP pattern.
func (r *Recorder) RecordPatternMatch(side string) {
	r.matchesTotal.WithLabelValues(side).Inc()
}

// RecordPrediction records one published prediction batch.
func (r *Recorder) RecordPrediction() {
	r.predictionsGen.Inc()
}

// RecordPublishError records a sink publish failure.
func (r *Recorder) RecordPublishError(kind string) {
	r.publishErrors.WithLabelValues(kind).Inc()
}

// RecordCumulative records the current cumulative value for a side.
func (r *Recorder) RecordCumulative(side string, value float64) {
	r.cumulativeValue.WithLabelValues(side).Set(value)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
