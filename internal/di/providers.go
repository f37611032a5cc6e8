package di

import (
	"context"
	"fmt"
	"time"

	"github.com/supneo2025-ops/vwap-prediction/internal/detect"
	domrepo "github.com/supneo2025-ops/vwap-prediction/internal/domain/repository"
	"github.com/supneo2025-ops/vwap-prediction/internal/feed"
	"github.com/supneo2025-ops/vwap-prediction/internal/forecast"
	internalrepo "github.com/supneo2025-ops/vwap-prediction/internal/repository"
	"github.com/supneo2025-ops/vwap-prediction/internal/session"
	"github.com/supneo2025-ops/vwap-prediction/internal/usecase"
	pkgch "github.com/supneo2025-ops/vwap-prediction/pkg/clickhouse"
	"github.com/supneo2025-ops/vwap-prediction/pkg/config"
	"github.com/supneo2025-ops/vwap-prediction/pkg/kvstore"
	applogger "github.com/supneo2025-ops/vwap-prediction/pkg/logger"
	"github.com/supneo2025-ops/vwap-prediction/pkg/metrics"
	"github.com/supneo2025-ops/vwap-prediction/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus recorder, or a no-op one when the
// metrics listener is disabled.
func ProvideMetrics(cfg *config.Config) domrepo.Metrics {
	if !cfg.Metrics.Enabled {
		return domrepo.NopMetrics{}
	}
	return metrics.New()
}

// ProvideClock builds the session clock from timezone, recess and cutoff.
func ProvideClock(cfg *config.Config) (*session.Clock, error) {
	return session.FromConfig(cfg)
}

// ProvideDetector creates the pattern detector.
func ProvideDetector(cfg *config.Config) *detect.Detector {
	return detect.New(detect.Config{
		WindowSeconds:   cfg.Detector.WindowSeconds,
		MinOccurrences:  cfg.Detector.MinOccurrences,
		VolumeThreshold: cfg.Detector.VolumeThreshold,
		CleanupInterval: cfg.Detector.CleanupInterval,
	})
}

// ProvidePredictor creates the rate extrapolator.
func ProvidePredictor(cfg *config.Config) *forecast.Predictor {
	return forecast.New(cfg.Predictor.HorizonsMinutes)
}

// ProvideFeedSource selects the line source from config.
func ProvideFeedSource(cfg *config.Config) (domrepo.FeedSource, error) {
	switch cfg.Feed.Source {
	case "stdin":
		return feed.NewStdinSource(), nil
	case "file":
		return feed.NewFileSource(cfg.Feed.Path)
	case "kafka":
		return feed.NewKafkaSource(feed.KafkaSourceConfig{
			Brokers:  cfg.Feed.Kafka.Brokers,
			Topic:    cfg.Feed.Kafka.Topic,
			GroupID:  cfg.Feed.Kafka.GroupID,
			MinBytes: cfg.Feed.Kafka.MinBytes,
			MaxBytes: cfg.Feed.Kafka.MaxBytes,
		})
	case "websocket":
		return feed.NewWSSource(
			cfg.Feed.WebSocket.URL,
			cfg.Feed.WebSocket.Channel,
			cfg.Feed.WebSocket.ReconnectDelay,
			cfg.Feed.WebSocket.PingInterval,
		), nil
	default:
		return nil, fmt.Errorf("unknown feed source %q", cfg.Feed.Source)
	}
}

// ProvideStore selects the key-value backend from config.
func ProvideStore(cfg *config.Config) (kvstore.Store, error) {
	if cfg.Sink.Backend == "memory" {
		return kvstore.NewMemoryStore(), nil
	}
	store, err := kvstore.NewRedisStore(
		kvstore.WithAddr(cfg.Sink.Redis.Addr),
		kvstore.WithAuth(cfg.Sink.Redis.Password, cfg.Sink.Redis.DB),
		kvstore.WithPrefix(cfg.Sink.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis store: %w", err)
	}
	return store, nil
}

// ProvideSink wraps the store with the fixed publish keys.
func ProvideSink(store kvstore.Store, cfg *config.Config) domrepo.ResultSink {
	return internalrepo.NewStoreSink(store, internalrepo.SinkKeys{
		Predictions: cfg.Sink.Keys.Predictions,
		Latest:      cfg.Sink.Keys.Latest,
		Rates:       cfg.Sink.Keys.Rates,
	})
}

// ProvideArchiver creates the ClickHouse archive when enabled, including
// database and table schema. Disabled archival yields a nil Archiver.
func ProvideArchiver(cfg *config.Config) (domrepo.Archiver, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.Archive.ClickHouse.Host),
		pkgch.WithPort(cfg.Archive.ClickHouse.Port),
		pkgch.WithDatabase(cfg.Archive.ClickHouse.Database),
		pkgch.WithCredentials(cfg.Archive.ClickHouse.User, cfg.Archive.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.Archive.ClickHouse.DialTimeout, cfg.Archive.ClickHouse.ReadTimeout, cfg.Archive.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.Archive.ClickHouse.Database,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	archive := internalrepo.NewClickHouseArchive(client.DB(), cfg.Archive.Table, client.Close)
	if err := archive.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("archive init: %w", err)
	}
	return archive, nil
}

// ProvidePublisher creates the row publisher use case.
func ProvidePublisher(
	sink domrepo.ResultSink,
	archive domrepo.Archiver,
	clock *session.Clock,
	predictor *forecast.Predictor,
	m domrepo.Metrics,
	logger *applogger.Logger,
) *usecase.RowPublisher {
	return usecase.NewRowPublisher(sink, archive, clock, predictor, m, logger)
}

// ProvideReplay creates the replay orchestrator use case.
func ProvideReplay(
	source domrepo.FeedSource,
	detector *detect.Detector,
	clock *session.Clock,
	pub *usecase.RowPublisher,
	m domrepo.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.Replay {
	return usecase.NewReplay(source, detector, clock, pub, m, logger, usecase.ReplayConfig{
		SpeedMultiplier: cfg.Replay.SpeedMultiplier,
		IntervalSeconds: cfg.Predictor.IntervalSeconds,
		ProgressEvery:   cfg.Replay.ProgressEvery,
	})
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	replay *usecase.Replay,
	source domrepo.FeedSource,
	store kvstore.Store,
	archive domrepo.Archiver,
) *server.App {
	return server.New(cfg, logger, replay, source, store, archive)
}
