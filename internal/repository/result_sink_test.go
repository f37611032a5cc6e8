package repository

import (
	"context"
	"testing"

	"github.com/supneo2025-ops/vwap-prediction/internal/domain/models"
	"github.com/supneo2025-ops/vwap-prediction/pkg/kvstore"
)

func TestLoadRowsEmptySinkIsNotAnError(t *testing.T) {
	sink := NewStoreSink(kvstore.NewMemoryStore(), DefaultSinkKeys())
	rows, err := sink.LoadRows(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rows != nil {
		t.Fatalf("rows = %v, want nil", rows)
	}
}

func TestPublishRowsRoundTrip(t *testing.T) {
	sink := NewStoreSink(kvstore.NewMemoryStore(), DefaultSinkKeys())
	ctx := context.Background()

	in := []models.PublishedRow{
		{
			Timestamp:     1715740200000,
			EffectiveTime: 1715740200000,
			Datetime:      "2024-05-15 09:30:00.000 +0700",
			BU:            0.005,
			Net:           0.005,
			Forecasts: []models.HorizonForecast{
				{HorizonMin: 15, BU: 0.01, Net: 0.01, PredDatetime: "2024-05-15 09:45:00.000 +0700"},
			},
		},
	}
	if err := sink.PublishRows(ctx, in); err != nil {
		t.Fatalf("publish: %v", err)
	}

	out, err := sink.LoadRows(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 1 || out[0].BU != 0.005 || len(out[0].Forecasts) != 1 {
		t.Fatalf("round trip: %+v", out)
	}
	if out[0].Forecasts[0].HorizonMin != 15 {
		t.Fatalf("forecast: %+v", out[0].Forecasts[0])
	}
}

func TestPublishReplacesWholeTable(t *testing.T) {
	sink := NewStoreSink(kvstore.NewMemoryStore(), DefaultSinkKeys())
	ctx := context.Background()

	if err := sink.PublishRows(ctx, []models.PublishedRow{{BU: 1}, {BU: 2}}); err != nil {
		t.Fatal(err)
	}
	if err := sink.PublishRows(ctx, []models.PublishedRow{{BU: 3}}); err != nil {
		t.Fatal(err)
	}

	out, err := sink.LoadRows(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].BU != 3 {
		t.Fatalf("table not replaced: %+v", out)
	}
}

func TestEmptySinkKeysFallBackToDefaults(t *testing.T) {
	store := kvstore.NewMemoryStore()
	sink := NewStoreSink(store, SinkKeys{})
	ctx := context.Background()

	if err := sink.PublishRates(ctx, models.RateTriple{BU: 0.1}); err != nil {
		t.Fatal(err)
	}
	if ok, _ := store.Exists(ctx, DefaultSinkKeys().Rates); !ok {
		t.Fatalf("rates not written under default key")
	}
}
