//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/jeonghun43/Prism/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideTargetRepository,
	ProvideQuestionRepository,
	ProvideResponseRepository,
	ProvideReportLockRepository,
	ProvideNotificationRepository,
	ProvideConnectionRepository,
	ProvideEventPublisher,
	ProvideHub,
	ProvideBroadcaster,
	ProvideRateLimiter,
	ProvideNotificationService,
	ProvideReportService,
	ProvideVoteService,
	ProvideTargetService,
	ProvideHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
