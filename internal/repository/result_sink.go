package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/supneo2025-ops/vwap-prediction/internal/domain/models"
	domrepo "github.com/supneo2025-ops/vwap-prediction/internal/domain/repository"
	"github.com/supneo2025-ops/vwap-prediction/pkg/kvstore"
)

// SinkKeys are the fixed keys the pipeline publishes under.
type SinkKeys struct {
	Predictions string // full row history, replaced each cadence tick
	Latest      string // lightweight projection of the newest row
	Rates       string // instantaneous rate triple
}

// DefaultSinkKeys matches what the dashboard reads.
func DefaultSinkKeys() SinkKeys {
	return SinkKeys{
		Predictions: "vwap_predictions",
		Latest:      "vwap_predictions_latest",
		Rates:       "vwap_current_rates",
	}
}

// StoreSink implements ResultSink over a key-value store.
type StoreSink struct {
	store kvstore.Store
	keys  SinkKeys
}

// NewStoreSink creates a sink writing to the given store.
func NewStoreSink(store kvstore.Store, keys SinkKeys) *StoreSink {
	def := DefaultSinkKeys()
	if keys.Predictions == "" {
		keys.Predictions = def.Predictions
	}
	if keys.Latest == "" {
		keys.Latest = def.Latest
	}
	if keys.Rates == "" {
		keys.Rates = def.Rates
	}
	return &StoreSink{store: store, keys: keys}
}

func (s *StoreSink) PublishRows(ctx context.Context, rows []models.PublishedRow) error {
	if err := kvstore.PutJSON(ctx, s.store, s.keys.Predictions, rows); err != nil {
		return fmt.Errorf("publish rows: %w", err)
	}
	return nil
}

func (s *StoreSink) PublishLatest(ctx context.Context, row models.PublishedRow) error {
	if err := kvstore.PutJSON(ctx, s.store, s.keys.Latest, row); err != nil {
		return fmt.Errorf("publish latest: %w", err)
	}
	return nil
}

func (s *StoreSink) PublishRates(ctx context.Context, rates models.RateTriple) error {
	if err := kvstore.PutJSON(ctx, s.store, s.keys.Rates, rates); err != nil {
		return fmt.Errorf("publish rates: %w", err)
	}
	return nil
}

// LoadRows returns the published table, or an empty slice when nothing has
// been published yet. Only transport failures surface as errors.
func (s *StoreSink) LoadRows(ctx context.Context) ([]models.PublishedRow, error) {
	var rows []models.PublishedRow
	err := kvstore.GetJSON(ctx, s.store, s.keys.Predictions, &rows)
	if errors.Is(err, kvstore.ErrKeyMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}
	return rows, nil
}

func (s *StoreSink) Close() error {
	return s.store.Close()
}

var _ domrepo.ResultSink = (*StoreSink)(nil)
