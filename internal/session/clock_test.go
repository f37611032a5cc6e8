package session

import (
	"testing"
	"time"
)

func mustClock(t *testing.T) *Clock {
	t.Helper()
	c, err := NewClock("Asia/Ho_Chi_Minh", "11:30", "13:00", "14:40")
	if err != nil {
		t.Fatalf("clock: %v", err)
	}
	return c
}

func localMillis(t *testing.T, c *Clock, hour, min, sec int) int64 {
	t.Helper()
	return time.Date(2024, 5, 15, hour, min, sec, 0, c.Location()).UnixMilli()
}

func TestCompressBeforeRecess(t *testing.T) {
	c := mustClock(t)
	ts := localMillis(t, c, 9, 15, 0)
	if got := c.Compress(ts); got != ts {
		t.Fatalf("morning timestamp must pass through, got %d want %d", got, ts)
	}
	// exactly at recess start also passes through
	start := localMillis(t, c, 11, 30, 0)
	if got := c.Compress(start); got != start {
		t.Fatalf("recess start must map to itself, got %d want %d", got, start)
	}
}

func TestCompressInsideRecess(t *testing.T) {
	c := mustClock(t)
	start := localMillis(t, c, 11, 30, 0)
	for _, ts := range []int64{
		localMillis(t, c, 11, 30, 1),
		localMillis(t, c, 12, 15, 0),
		localMillis(t, c, 12, 59, 59),
	} {
		if got := c.Compress(ts); got != start {
			t.Fatalf("recess timestamp %d must collapse to start %d, got %d", ts, start, got)
		}
	}
}

func TestCompressAfterRecess(t *testing.T) {
	c := mustClock(t)
	recess := c.RecessDuration().Milliseconds()
	if recess != 90*60*1000 {
		t.Fatalf("unexpected recess duration %d", recess)
	}
	for _, hm := range [][2]int{{13, 0}, {13, 30}, {14, 39}} {
		ts := localMillis(t, c, hm[0], hm[1], 0)
		if got := c.Compress(ts); got != ts-recess {
			t.Fatalf("afternoon timestamp %d: got %d want %d", ts, got, ts-recess)
		}
	}
}

func TestCompressedTimelineIsContinuous(t *testing.T) {
	c := mustClock(t)
	// one second before the recess and one second after it must be two
	// seconds apart on the compressed timeline
	before := localMillis(t, c, 11, 29, 59)
	after := localMillis(t, c, 13, 0, 1)
	delta := c.Compress(after) - c.Compress(before)
	if delta != 2000 {
		t.Fatalf("expected 2s compressed delta across the recess, got %dms", delta)
	}
}

func TestAfterCutoff(t *testing.T) {
	c := mustClock(t)
	cases := []struct {
		hour, min int
		want      bool
	}{
		{9, 0, false},
		{14, 39, false},
		{14, 40, true},
		{14, 41, true},
		{15, 0, true},
	}
	for _, tc := range cases {
		ts := localMillis(t, c, tc.hour, tc.min, 0)
		if got := c.AfterCutoff(ts); got != tc.want {
			t.Fatalf("cutoff at %02d:%02d: got %v want %v", tc.hour, tc.min, got, tc.want)
		}
	}
}

func TestCutoffUsesOriginalTime(t *testing.T) {
	c := mustClock(t)
	// 14:41 compresses to 13:11 on the gap-free timeline, which is before
	// the cutoff, but the check must still reject using the original time.
	ts := localMillis(t, c, 14, 41, 0)
	if !c.AfterCutoff(ts) {
		t.Fatalf("original 14:41 must be past cutoff")
	}
	compressed := c.Compress(ts)
	local := time.UnixMilli(compressed).In(c.Location())
	if local.Hour() != 13 || local.Minute() != 11 {
		t.Fatalf("expected compressed 13:11, got %02d:%02d", local.Hour(), local.Minute())
	}
}

func TestNewClockRejectsBadInput(t *testing.T) {
	if _, err := NewClock("Not/AZone", "11:30", "13:00", "14:40"); err == nil {
		t.Fatalf("expected timezone error")
	}
	if _, err := NewClock("Asia/Ho_Chi_Minh", "13:00", "11:30", "14:40"); err == nil {
		t.Fatalf("expected inverted recess error")
	}
	if _, err := NewClock("Asia/Ho_Chi_Minh", "11:30", "13:00", "25:00"); err == nil {
		t.Fatalf("expected cutoff parse error")
	}
}
