//go:build wireinject
// +build wireinject

package di

import (
	"github.com/supneo2025-ops/vwap-prediction/pkg/config"
	"github.com/supneo2025-ops/vwap-prediction/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Core pipeline components
		ProvideClock,
		ProvideDetector,
		ProvidePredictor,

		// Infrastructure
		ProvideFeedSource,
		ProvideStore,
		ProvideSink,
		ProvideArchiver,

		// Use cases
		ProvidePublisher,
		ProvideReplay,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
