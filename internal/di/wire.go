//go:build wireinject
// +build wireinject

package di

import (
	"QuantEase/pkg/config"
	"QuantEase/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,
		ProvideSessionCache,

		// Repositories
		ProvidePriceProvider,
		ProvideRunStore,
		ProvideRunPublisher,

		// Use cases
		ProvideChartWriter,
		ProvideRunRecorder,
		ProvideRunEventsHandler,
		ProvideRunner,
		ProvideConversation,
		ProvideAdvisor,
		ProvideJobTracker,
		ProvideJobQueue,
		ProvideQueueService,

		// HTTP handler and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
