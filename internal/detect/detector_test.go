package detect

import (
	"math"
	"testing"

	"github.com/supneo2025-ops/vwap-prediction/internal/domain/models"
)

func bubble(symbol string, volume int64, price float64, ts int64, side models.Side) *models.Bubble {
	return &models.Bubble{
		Symbol:       symbol,
		Volume:       volume,
		Price:        price,
		Timestamp:    ts,
		RawTimestamp: ts,
		Side:         side,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

// Events 1-5 within the window are never flagged; accumulation starts
// exactly at event 6 with volume*price/1e9.
func TestThresholdSemantics(t *testing.T) {
	d := New(DefaultConfig())
	base := int64(1_700_000_000_000)

	var st models.VWAPState
	for i := 0; i < 5; i++ {
		b := bubble("HPG", 500, 10000, base+int64(i)*1000, models.SideBuyUp)
		st = d.AddBubble(b)
		if b.IsVWAP {
			t.Fatalf("event %d must not be flagged", i+1)
		}
		if st.BU != 0 || st.SD != 0 || st.Net != 0 {
			t.Fatalf("event %d: sums must stay zero, got %+v", i+1, st)
		}
	}

	sixth := bubble("HPG", 500, 10000, base+5000, models.SideBuyUp)
	st = d.AddBubble(sixth)
	if !sixth.IsVWAP {
		t.Fatalf("event 6 must be flagged")
	}
	if !almostEqual(st.BU, 0.005) {
		t.Fatalf("bu after event 6: got %v want 0.005", st.BU)
	}
	if st.SD != 0 || !almostEqual(st.Net, 0.005) {
		t.Fatalf("sd/net after event 6: %+v", st)
	}

	seventh := bubble("HPG", 500, 10000, base+6000, models.SideBuyUp)
	st = d.AddBubble(seventh)
	if !seventh.IsVWAP || !almostEqual(st.BU, 0.01) {
		t.Fatalf("event 7: flagged=%v bu=%v", seventh.IsVWAP, st.BU)
	}
}

func TestVolumeFloor(t *testing.T) {
	d := New(DefaultConfig())
	base := int64(1_700_000_000_000)

	// volume exactly at the threshold is still noise
	for i := 0; i < 20; i++ {
		st := d.AddBubble(bubble("VNM", 200, 50000, base+int64(i)*100, models.SideBuyUp))
		if st.BU != 0 || st.SD != 0 {
			t.Fatalf("threshold-volume events must not accumulate: %+v", st)
		}
	}
	if d.Processed() != 0 {
		t.Fatalf("noise must not count as accepted events: %d", d.Processed())
	}
	if d.WindowLen(PatternKey{Symbol: "VNM", Volume: 200}, models.SideBuyUp) != 0 {
		t.Fatalf("noise must not enter any window")
	}
}

func TestSidesAccumulateIndependently(t *testing.T) {
	d := New(DefaultConfig())
	base := int64(1_700_000_000_000)

	for i := 0; i < 6; i++ {
		d.AddBubble(bubble("SSI", 1000, 30000, base+int64(i)*1000, models.SideBuyUp))
	}
	var st models.VWAPState
	for i := 0; i < 6; i++ {
		st = d.AddBubble(bubble("SSI", 1000, 30000, base+int64(i)*1000+500, models.SideSellDown))
	}

	want := 1000 * 30000.0 / 1e9
	if !almostEqual(st.BU, want) || !almostEqual(st.SD, want) {
		t.Fatalf("bu=%v sd=%v want %v each", st.BU, st.SD, want)
	}
	if !almostEqual(st.Net, 0) {
		t.Fatalf("net should cancel out, got %v", st.Net)
	}
}

func TestDistinctVolumesAreDistinctPatterns(t *testing.T) {
	d := New(DefaultConfig())
	base := int64(1_700_000_000_000)

	// alternate two lot sizes; neither window reaches the threshold
	for i := 0; i < 8; i++ {
		vol := int64(500)
		if i%2 == 1 {
			vol = 600
		}
		st := d.AddBubble(bubble("HPG", vol, 10000, base+int64(i)*1000, models.SideBuyUp))
		if st.BU != 0 {
			t.Fatalf("mixed lot sizes must not be flagged: %+v", st)
		}
	}
}

func TestUnknownSidePassesThrough(t *testing.T) {
	d := New(DefaultConfig())
	b := bubble("HPG", 500, 10000, 1_700_000_000_000, models.Side("??"))
	st := d.AddBubble(b)
	if b.IsVWAP || st.BU != 0 || st.SD != 0 {
		t.Fatalf("unknown side must leave state unchanged")
	}
	if d.Processed() != 0 {
		t.Fatalf("unknown side must not advance the sweep counter")
	}
}

// After the sweep, evicted occurrences no longer count and the pattern
// must re-earn the threshold from zero.
func TestWindowEvictionRestartsCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CleanupInterval = 10
	d := New(cfg)
	base := int64(1_700_000_000_000)
	key := PatternKey{Symbol: "HPG", Volume: 500}

	// four occurrences, below the threshold
	for i := 0; i < 4; i++ {
		d.AddBubble(bubble("HPG", 500, 10000, base+int64(i)*1000, models.SideBuyUp))
	}

	// push the clock far past the 300s window with unrelated traffic until
	// a sweep fires
	far := base + 400_000
	for i := 0; i < 10; i++ {
		d.AddBubble(bubble("VIC", 900, 20000, far+int64(i)*1000, models.SideSellDown))
	}
	if got := d.WindowLen(key, models.SideBuyUp); got != 0 {
		t.Fatalf("stale window must be evicted, still holds %d", got)
	}

	// the same key must start over: five fresh events, none flagged
	var st models.VWAPState
	for i := 0; i < 5; i++ {
		b := bubble("HPG", 500, 10000, far+20_000+int64(i)*1000, models.SideBuyUp)
		st = d.AddBubble(b)
		if b.IsVWAP {
			t.Fatalf("occurrence count must restart after eviction")
		}
	}
	if st.BU != 0 {
		t.Fatalf("no accumulation before re-earning the threshold: %v", st.BU)
	}
}

func TestSweepKeepsRecentEvents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CleanupInterval = 6
	d := New(cfg)
	base := int64(1_700_000_000_000)
	key := PatternKey{Symbol: "HPG", Volume: 500}

	// two old, then three recent, then one more recent to trigger the
	// sweep at the sixth accepted event
	d.AddBubble(bubble("HPG", 500, 10000, base, models.SideBuyUp))
	d.AddBubble(bubble("HPG", 500, 10000, base+1000, models.SideBuyUp))
	recent := base + 400_000
	d.AddBubble(bubble("HPG", 500, 10000, recent, models.SideBuyUp))
	d.AddBubble(bubble("HPG", 500, 10000, recent+1000, models.SideBuyUp))
	d.AddBubble(bubble("HPG", 500, 10000, recent+2000, models.SideBuyUp))
	d.AddBubble(bubble("HPG", 500, 10000, recent+3000, models.SideBuyUp))

	if got := d.WindowLen(key, models.SideBuyUp); got != 4 {
		t.Fatalf("sweep must drop only the stale head: got %d want 4", got)
	}
}

// Cumulative sums never decrease, whatever the traffic mix.
func TestCumulativeMonotonicity(t *testing.T) {
	d := New(DefaultConfig())
	base := int64(1_700_000_000_000)

	var prevBU, prevSD float64
	symbols := []string{"HPG", "VNM", "SSI"}
	for i := 0; i < 200; i++ {
		side := models.SideBuyUp
		if i%3 == 0 {
			side = models.SideSellDown
		}
		b := bubble(symbols[i%3], int64(500+(i%2)*100), 10000+float64(i), base+int64(i)*500, side)
		st := d.AddBubble(b)
		if st.BU < prevBU || st.SD < prevSD {
			t.Fatalf("cumulative sums went backwards at event %d", i)
		}
		prevBU, prevSD = st.BU, st.SD
	}
}
