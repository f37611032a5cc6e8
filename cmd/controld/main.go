// controld serves the replay control API: list capture days, start and
// stop replay workers, report status.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/supneo2025-ops/vwap-prediction/internal/control"
	"github.com/supneo2025-ops/vwap-prediction/internal/handler/api"
	"github.com/supneo2025-ops/vwap-prediction/pkg/config"
	xhttp "github.com/supneo2025-ops/vwap-prediction/pkg/http"
	applogger "github.com/supneo2025-ops/vwap-prediction/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if cfg.Control.DataDir == "" {
		log.Fatal("control.data_dir is required")
	}
	if cfg.Control.ReplayBin == "" {
		log.Fatal("control.replay_bin is required")
	}

	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	sup := control.New(cfg, l)
	handler := api.NewControlEchoHandler(l, sup)

	srv := xhttp.NewServer(handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
	)
	if err := srv.Start(); err != nil {
		log.Fatalf("http server start failed: %v", err)
	}
	l.Info("controld started",
		applogger.Int("port", cfg.Server.Port),
		applogger.String("data_dir", cfg.Control.DataDir),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	if running, _, _, _ := sup.Status(); running {
		if err := sup.Stop(); err != nil {
			l.Warn("stop replay on shutdown", applogger.Error(err))
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}
}
