package main

import (
	"flag"
	"log"
	"os"

	"github.com/supneo2025-ops/vwap-prediction/internal/di"
	"github.com/supneo2025-ops/vwap-prediction/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	input := flag.String("input", "", "capture file to replay (overrides feed config)")
	speed := flag.Float64("speed", 0, "replay speed multiplier (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if *input != "" {
		cfg.Feed.Source = "file"
		cfg.Feed.Path = *input
	}
	if *speed > 0 {
		cfg.Replay.SpeedMultiplier = *speed
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	log.Printf("env=%s feed=%s sink=%s speed=%gx",
		cfg.Environment, cfg.Feed.Source, cfg.Sink.Backend, cfg.Replay.SpeedMultiplier)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

// loadConfig falls back to built-in defaults when the config file is
// absent, so the worker runs standalone with just -input.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.LoadWithEnv(path)
}
