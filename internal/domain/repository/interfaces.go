package repository

import (
	"context"

	"github.com/supneo2025-ops/vwap-prediction/internal/domain/models"
)

// FeedSource yields raw wire lines in arrival order. Implementations:
// stdin, capture file, Kafka topic, live WebSocket.
type FeedSource interface {
	Lines(ctx context.Context) (<-chan string, <-chan error)
	Close() error
}

// ResultSink hands published tables to the visualization layer. The replay
// loop writes the full row history under one fixed key and the latest rate
// triple under another on every cadence tick.
type ResultSink interface {
	PublishRows(ctx context.Context, rows []models.PublishedRow) error
	PublishLatest(ctx context.Context, row models.PublishedRow) error
	PublishRates(ctx context.Context, rates models.RateTriple) error
	LoadRows(ctx context.Context) ([]models.PublishedRow, error)
	Close() error
}

// Archiver persists published rows as an append-only log for later
// verification. Optional; a nil Archiver disables archival.
type Archiver interface {
	Init(ctx context.Context) error
	Archive(ctx context.Context, row models.PublishedRow) error
	Close() error
}

// Metrics abstracts the Prometheus recorder so core packages stay free of
// the client library.
type Metrics interface {
	RecordBubble(symbol string)
	RecordReject(reason string)
	RecordPatternMatch(side string)
	RecordPrediction()
	RecordPublishError(kind string)
	RecordCumulative(side string, value float64)
	RecordLatency(op string, seconds float64)
}

// NopMetrics discards all observations; used by tests and the verify tool.
type NopMetrics struct{}

func (NopMetrics) RecordBubble(string)              {}
func (NopMetrics) RecordReject(string)              {}
func (NopMetrics) RecordPatternMatch(string)        {}
func (NopMetrics) RecordPrediction()                {}
func (NopMetrics) RecordPublishError(string)        {}
func (NopMetrics) RecordCumulative(string, float64) {}
func (NopMetrics) RecordLatency(string, float64)    {}
