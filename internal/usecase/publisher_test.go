package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/supneo2025-ops/vwap-prediction/internal/domain/models"
	domrepo "github.com/supneo2025-ops/vwap-prediction/internal/domain/repository"
	"github.com/supneo2025-ops/vwap-prediction/internal/forecast"
	"github.com/supneo2025-ops/vwap-prediction/internal/repository"
	"github.com/supneo2025-ops/vwap-prediction/pkg/kvstore"
	applogger "github.com/supneo2025-ops/vwap-prediction/pkg/logger"
)

type failingSink struct{}

func (failingSink) PublishRows(context.Context, []models.PublishedRow) error {
	return errors.New("sink down")
}
func (failingSink) PublishLatest(context.Context, models.PublishedRow) error {
	return errors.New("sink down")
}
func (failingSink) PublishRates(context.Context, models.RateTriple) error {
	return errors.New("sink down")
}
func (failingSink) LoadRows(context.Context) ([]models.PublishedRow, error) { return nil, nil }
func (failingSink) Close() error                                            { return nil }

func newTestPublisher(t *testing.T, sink domrepo.ResultSink) *RowPublisher {
	t.Helper()
	return NewRowPublisher(sink, nil, testClock(t), forecast.New([]int{15}),
		domrepo.NopMetrics{}, applogger.Nop())
}

func TestPublishTickAccumulatesRows(t *testing.T) {
	clock := testClock(t)
	store := kvstore.NewMemoryStore()
	sink := repository.NewStoreSink(store, repository.DefaultSinkKeys())
	pub := newTestPublisher(t, sink)

	base := exchangeMillis(clock, 9, 30, 0)
	for i := 0; i < 3; i++ {
		ts := base + int64(i)*15_000
		pub.PublishTick(context.Background(), models.VWAPState{
			Timestamp: ts, BU: float64(i), Net: float64(i),
		}, ts)
	}

	if pub.Published() != 3 {
		t.Fatalf("published = %d", pub.Published())
	}

	rows, err := sink.LoadRows(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want the full table republished", len(rows))
	}
	if rows[2].BU != 2 {
		t.Fatalf("last row: %+v", rows[2])
	}
}

// Forecast display times extend the original wall clock, not the
// compressed one.
func TestForecastDatetimeUsesOriginalTimeline(t *testing.T) {
	clock := testClock(t)
	store := kvstore.NewMemoryStore()
	sink := repository.NewStoreSink(store, repository.DefaultSinkKeys())
	pub := newTestPublisher(t, sink)

	raw := exchangeMillis(clock, 13, 30, 0)
	pub.PublishTick(context.Background(), models.VWAPState{
		Timestamp: clock.Compress(raw), BU: 1, Net: 1,
	}, raw)

	rows := pub.Rows()
	if len(rows) != 1 || len(rows[0].Forecasts) != 1 {
		t.Fatalf("rows: %+v", rows)
	}
	want := clock.FormatLocal(raw + 15*60_000) // 13:45 local
	if rows[0].Forecasts[0].PredDatetime != want {
		t.Fatalf("pred datetime = %q, want %q", rows[0].Forecasts[0].PredDatetime, want)
	}
	if rows[0].Datetime != clock.FormatLocal(raw) {
		t.Fatalf("datetime = %q", rows[0].Datetime)
	}
}

// A dead sink never fails the tick; the publisher keeps counting and the
// internal table keeps growing for the next attempt.
func TestPublishFailuresAreSwallowed(t *testing.T) {
	clock := testClock(t)
	pub := newTestPublisher(t, failingSink{})

	ts := exchangeMillis(clock, 9, 30, 0)
	pub.PublishTick(context.Background(), models.VWAPState{Timestamp: ts, BU: 1, Net: 1}, ts)
	pub.PublishTick(context.Background(), models.VWAPState{Timestamp: ts + 15_000, BU: 2, Net: 2}, ts+15_000)

	if pub.Published() != 2 {
		t.Fatalf("published = %d", pub.Published())
	}
	if len(pub.Rows()) != 2 {
		t.Fatalf("rows = %d", len(pub.Rows()))
	}
}
