package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	domrepo "github.com/supneo2025-ops/vwap-prediction/internal/domain/repository"
	"github.com/supneo2025-ops/vwap-prediction/internal/usecase"
	"github.com/supneo2025-ops/vwap-prediction/pkg/config"
	"github.com/supneo2025-ops/vwap-prediction/pkg/kvstore"
	applogger "github.com/supneo2025-ops/vwap-prediction/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App encapsulates the replay worker lifecycle: run the pipeline until
// EOF or a signal, then release every client in reverse order.
type App struct {
	cfg     *config.Config
	logger  *applogger.Logger
	replay  *usecase.Replay
	source  domrepo.FeedSource
	store   kvstore.Store
	archive domrepo.Archiver
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	replay *usecase.Replay,
	source domrepo.FeedSource,
	store kvstore.Store,
	archive domrepo.Archiver,
) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		replay:  replay,
		source:  source,
		store:   store,
		archive: archive,
	}
}

// Run drives the pipeline and blocks until it drains or a signal
// arrives. The replay loop itself never fails; errors here are setup
// errors only.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsSrv *http.Server
	if a.cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(a.cfg.Metrics.Path, promhttp.Handler())
		metricsSrv = &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.logger.Warn("metrics listener error", applogger.Error(err))
			}
		}()
		a.logger.Info("metrics listening", applogger.String("addr", a.cfg.Metrics.Addr))
	}

	err := a.replay.Run(ctx)

	a.shutdown(metricsSrv)
	return err
}

func (a *App) shutdown(metricsSrv *http.Server) {
	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics shutdown error", applogger.Error(err))
		}
	}
	if err := a.source.Close(); err != nil {
		a.logger.Warn("feed close error", applogger.Error(err))
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.logger.Warn("archive close error", applogger.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close error", applogger.Error(err))
	}
	a.logger.Info("shutdown complete")
}
