package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/supneo2025-ops/vwap-prediction/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Logging     struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Detector struct {
		WindowSeconds   int   `yaml:"window_seconds"`
		MinOccurrences  int   `yaml:"min_occurrences"`
		VolumeThreshold int64 `yaml:"volume_threshold"`
		CleanupInterval int   `yaml:"cleanup_interval"`
	} `yaml:"detector"`
	Predictor struct {
		IntervalSeconds int   `yaml:"interval_seconds"`
		HorizonsMinutes []int `yaml:"horizons_minutes"`
	} `yaml:"predictor"`
	Replay struct {
		SpeedMultiplier float64 `yaml:"speed_multiplier"`
		CutoffTime      string  `yaml:"cutoff_time"` // HH:MM exchange local
		Timezone        string  `yaml:"timezone"`
		ProgressEvery   int     `yaml:"progress_every"`
	} `yaml:"replay"`
	Session struct {
		LunchStart string `yaml:"lunch_start"` // HH:MM
		LunchEnd   string `yaml:"lunch_end"`   // HH:MM
	} `yaml:"session"`
	Feed struct {
		Source string `yaml:"source"` // stdin, file, kafka, websocket
		Path   string `yaml:"path"`   // for source=file
		Kafka  struct {
			Brokers  []string `yaml:"brokers"`
			Topic    string   `yaml:"topic"`
			GroupID  string   `yaml:"group_id"`
			MinBytes int      `yaml:"min_bytes"`
			MaxBytes int      `yaml:"max_bytes"`
		} `yaml:"kafka"`
		WebSocket struct {
			URL            string        `yaml:"url"`
			Channel        string        `yaml:"channel"`
			ReconnectDelay time.Duration `yaml:"reconnect_delay"`
			PingInterval   time.Duration `yaml:"ping_interval"`
		} `yaml:"websocket"`
	} `yaml:"feed"`
	Sink struct {
		Backend string `yaml:"backend"` // redis or memory
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Keys struct {
			Predictions string `yaml:"predictions"`
			Latest      string `yaml:"latest"`
			Rates       string `yaml:"rates"`
		} `yaml:"keys"`
	} `yaml:"sink"`
	Archive struct {
		Enabled    bool   `yaml:"enabled"`
		Table      string `yaml:"table"`
		ClickHouse struct {
			Host         string        `yaml:"host"`
			Port         int           `yaml:"port"`
			Database     string        `yaml:"database"`
			User         string        `yaml:"user"`
			Password     string        `yaml:"password"`
			DialTimeout  time.Duration `yaml:"dial_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
		} `yaml:"clickhouse"`
	} `yaml:"archive"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Control struct {
		DataDir     string        `yaml:"data_dir"`
		FileSuffix  string        `yaml:"file_suffix"`
		ReplayBin   string        `yaml:"replay_bin"`
		ConfigPath  string        `yaml:"config_path"`
		StopTimeout time.Duration `yaml:"stop_timeout"`
	} `yaml:"control"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Sink.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Sink.Redis.Password = v
	}
	if v := os.Getenv("FEED_SOURCE"); v != "" {
		c.Feed.Source = v
	}
	if v := os.Getenv("FEED_PATH"); v != "" {
		c.Feed.Path = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Feed.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Control.DataDir = v
	}
	if v := os.Getenv("REPLAY_SPEED"); v != "" {
		c.Replay.SpeedMultiplier = util.ParseFloatDefault(v, c.Replay.SpeedMultiplier)
	}
	if v := os.Getenv("PROGRESS_EVERY"); v != "" {
		c.Replay.ProgressEvery = util.ParseIntDefault(v, c.Replay.ProgressEvery)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Default returns a configuration with all defaults applied, without
// reading a file. Used by tests and by the replay binary when no config
// file is given.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
	if c.Detector.WindowSeconds == 0 {
		c.Detector.WindowSeconds = 300
	}
	if c.Detector.MinOccurrences == 0 {
		c.Detector.MinOccurrences = 5
	}
	if c.Detector.VolumeThreshold == 0 {
		c.Detector.VolumeThreshold = 200
	}
	if c.Detector.CleanupInterval == 0 {
		c.Detector.CleanupInterval = 100
	}
	if c.Predictor.IntervalSeconds == 0 {
		c.Predictor.IntervalSeconds = 15
	}
	if len(c.Predictor.HorizonsMinutes) == 0 {
		c.Predictor.HorizonsMinutes = []int{15}
	}
	if c.Replay.SpeedMultiplier == 0 {
		c.Replay.SpeedMultiplier = 5.0
	}
	if c.Replay.CutoffTime == "" {
		c.Replay.CutoffTime = "14:40"
	}
	if c.Replay.Timezone == "" {
		c.Replay.Timezone = "Asia/Ho_Chi_Minh"
	}
	if c.Replay.ProgressEvery == 0 {
		c.Replay.ProgressEvery = 1000
	}
	if c.Session.LunchStart == "" {
		c.Session.LunchStart = "11:30"
	}
	if c.Session.LunchEnd == "" {
		c.Session.LunchEnd = "13:00"
	}
	if c.Feed.Source == "" {
		c.Feed.Source = "stdin"
	}
	if c.Feed.Kafka.MinBytes == 0 {
		c.Feed.Kafka.MinBytes = 1
	}
	if c.Feed.Kafka.MaxBytes == 0 {
		c.Feed.Kafka.MaxBytes = 10 << 20
	}
	if c.Feed.WebSocket.ReconnectDelay == 0 {
		c.Feed.WebSocket.ReconnectDelay = 3 * time.Second
	}
	if c.Feed.WebSocket.PingInterval == 0 {
		c.Feed.WebSocket.PingInterval = 25 * time.Second
	}
	if c.Sink.Backend == "" {
		c.Sink.Backend = "redis"
	}
	if c.Sink.Redis.Addr == "" {
		c.Sink.Redis.Addr = "localhost:6379"
	}
	if c.Sink.Redis.Prefix == "" {
		c.Sink.Redis.Prefix = "vwap"
	}
	if c.Sink.Keys.Predictions == "" {
		c.Sink.Keys.Predictions = "vwap_predictions"
	}
	if c.Sink.Keys.Latest == "" {
		c.Sink.Keys.Latest = "vwap_predictions_latest"
	}
	if c.Sink.Keys.Rates == "" {
		c.Sink.Keys.Rates = "vwap_current_rates"
	}
	if c.Archive.Table == "" {
		c.Archive.Table = "vwap.prediction_rows"
	}
	if c.Archive.ClickHouse.Port == 0 {
		c.Archive.ClickHouse.Port = 9000
	}
	if c.Archive.ClickHouse.Database == "" {
		c.Archive.ClickHouse.Database = "vwap"
	}
	if c.Archive.ClickHouse.DialTimeout == 0 {
		c.Archive.ClickHouse.DialTimeout = 5 * time.Second
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = "127.0.0.1:9109"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Control.FileSuffix == "" {
		c.Control.FileSuffix = "_ssi_hose_busd.received.txt"
	}
	if c.Control.StopTimeout == 0 {
		c.Control.StopTimeout = 5 * time.Second
	}
}

// ParseHHMM parses "HH:MM" into minutes since midnight.
func ParseHHMM(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// Validate checks if the configuration is valid. Invalid parameter
// combinations are fatal at startup, before any input is consumed.
func (c *Config) Validate() error {
	if c.Detector.WindowSeconds <= 0 {
		return fmt.Errorf("detector.window_seconds must be positive")
	}
	if c.Detector.MinOccurrences <= 0 {
		return fmt.Errorf("detector.min_occurrences must be positive")
	}
	if c.Detector.VolumeThreshold < 0 {
		return fmt.Errorf("detector.volume_threshold must be non-negative")
	}
	if c.Detector.CleanupInterval <= 0 {
		return fmt.Errorf("detector.cleanup_interval must be positive")
	}
	if c.Predictor.IntervalSeconds <= 0 {
		return fmt.Errorf("predictor.interval_seconds must be positive")
	}
	for _, h := range c.Predictor.HorizonsMinutes {
		if h <= 0 {
			return fmt.Errorf("predictor.horizons_minutes must all be positive, got %d", h)
		}
	}
	if c.Replay.SpeedMultiplier <= 0 {
		return fmt.Errorf("replay.speed_multiplier must be positive, got %v", c.Replay.SpeedMultiplier)
	}
	if _, err := time.LoadLocation(c.Replay.Timezone); err != nil {
		return fmt.Errorf("replay.timezone: %w", err)
	}
	cutoff, err := ParseHHMM(c.Replay.CutoffTime)
	if err != nil {
		return fmt.Errorf("replay.cutoff_time: %w", err)
	}
	start, err := ParseHHMM(c.Session.LunchStart)
	if err != nil {
		return fmt.Errorf("session.lunch_start: %w", err)
	}
	end, err := ParseHHMM(c.Session.LunchEnd)
	if err != nil {
		return fmt.Errorf("session.lunch_end: %w", err)
	}
	if end <= start {
		return fmt.Errorf("session lunch recess must end after it starts (%s..%s)", c.Session.LunchStart, c.Session.LunchEnd)
	}
	if cutoff <= end {
		return fmt.Errorf("replay.cutoff_time %s must be after the lunch recess", c.Replay.CutoffTime)
	}
	switch c.Feed.Source {
	case "stdin", "file", "kafka", "websocket":
	default:
		return fmt.Errorf("feed.source must be one of stdin, file, kafka, websocket; got %q", c.Feed.Source)
	}
	if c.Feed.Source == "file" && c.Feed.Path == "" {
		return fmt.Errorf("feed.path is required for feed.source=file")
	}
	if c.Feed.Source == "kafka" && (len(c.Feed.Kafka.Brokers) == 0 || c.Feed.Kafka.Topic == "") {
		return fmt.Errorf("feed.kafka.brokers and feed.kafka.topic are required for feed.source=kafka")
	}
	if c.Feed.Source == "websocket" && c.Feed.WebSocket.URL == "" {
		return fmt.Errorf("feed.websocket.url is required for feed.source=websocket")
	}
	if c.Sink.Backend != "redis" && c.Sink.Backend != "memory" {
		return fmt.Errorf("sink.backend must be 'redis' or 'memory', got %q", c.Sink.Backend)
	}
	return nil
}
