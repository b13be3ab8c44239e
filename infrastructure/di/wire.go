//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"taskflow-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDatabase,
	ProvideTaskRepository,
	ProvideUserRepository,
	ProvideConversationRepository,
	ProvideEventBus,
	ProvideJWTManager,
	ProvideTaskService,
	ProvideAuthService,
	ProvideReasoningGateway,
	ProvideCatalog,
	ProvideRegistry,
	ProvideOrchestrator,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
