package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if c.Detector.WindowSeconds != 300 || c.Detector.MinOccurrences != 5 {
		t.Fatalf("detector defaults: %+v", c.Detector)
	}
	if c.Replay.CutoffTime != "14:40" || c.Replay.Timezone != "Asia/Ho_Chi_Minh" {
		t.Fatalf("replay defaults: %+v", c.Replay)
	}
	if c.Sink.Keys.Predictions != "vwap_predictions" {
		t.Fatalf("sink key default: %q", c.Sink.Keys.Predictions)
	}
}

func TestLoadAppliesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
replay:
  speed_multiplier: 20
predictor:
  interval_seconds: 30
sink:
  backend: memory
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Replay.SpeedMultiplier != 20 {
		t.Fatalf("speed = %v", c.Replay.SpeedMultiplier)
	}
	if c.Predictor.IntervalSeconds != 30 {
		t.Fatalf("interval = %d", c.Predictor.IntervalSeconds)
	}
	if c.Sink.Backend != "memory" {
		t.Fatalf("backend = %q", c.Sink.Backend)
	}
	// untouched sections keep their defaults
	if c.Detector.VolumeThreshold != 200 {
		t.Fatalf("volume threshold = %d", c.Detector.VolumeThreshold)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative speed", func(c *Config) { c.Replay.SpeedMultiplier = -1 }},
		{"bad cutoff format", func(c *Config) { c.Replay.CutoffTime = "14h40" }},
		{"bad hour", func(c *Config) { c.Replay.CutoffTime = "25:00" }},
		{"inverted recess", func(c *Config) { c.Session.LunchStart = "13:00"; c.Session.LunchEnd = "11:30" }},
		{"cutoff inside recess", func(c *Config) { c.Replay.CutoffTime = "12:00" }},
		{"unknown feed source", func(c *Config) { c.Feed.Source = "carrier-pigeon" }},
		{"file feed without path", func(c *Config) { c.Feed.Source = "file" }},
		{"unknown sink backend", func(c *Config) { c.Sink.Backend = "sqlite" }},
		{"zero horizon", func(c *Config) { c.Predictor.HorizonsMinutes = []int{0} }},
		{"bad timezone", func(c *Config) { c.Replay.Timezone = "Mars/Olympus" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("sink:\n  backend: memory\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("REPLAY_SPEED", "12.5")
	t.Setenv("FEED_SOURCE", "file")
	t.Setenv("FEED_PATH", "/tmp/capture.txt")
	t.Setenv("PROGRESS_EVERY", "250")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Replay.SpeedMultiplier != 12.5 {
		t.Fatalf("speed = %v", c.Replay.SpeedMultiplier)
	}
	if c.Feed.Source != "file" || c.Feed.Path != "/tmp/capture.txt" {
		t.Fatalf("feed = %+v", c.Feed)
	}
	if c.Replay.ProgressEvery != 250 {
		t.Fatalf("progress = %d", c.Replay.ProgressEvery)
	}
}

func TestParseHHMM(t *testing.T) {
	got, err := ParseHHMM("14:40")
	if err != nil || got != 14*60+40 {
		t.Fatalf("got %d, %v", got, err)
	}
	for _, s := range []string{"", "14", "14:60", "24:00", "aa:bb"} {
		if _, err := ParseHHMM(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}
