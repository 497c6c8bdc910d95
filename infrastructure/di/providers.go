// Package di wires the application together. Providers switch between the
// DynamoDB and in-memory backends on cfg.StorageBackend, so the same injector
// serves production and local development.
package di

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
	"github.com/jeonghun43/Prism/application/services"
	"github.com/jeonghun43/Prism/infrastructure/config"
	"github.com/jeonghun43/Prism/infrastructure/messaging"
	"github.com/jeonghun43/Prism/infrastructure/messaging/eventbridge"
	dynamorepo "github.com/jeonghun43/Prism/infrastructure/persistence/dynamodb"
	"github.com/jeonghun43/Prism/infrastructure/persistence/memory"
	"github.com/jeonghun43/Prism/infrastructure/realtime"
	"github.com/jeonghun43/Prism/interfaces/http/rest"
	"github.com/jeonghun43/Prism/pkg/ratelimit"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideTargetRepository creates a target repository
func ProvideTargetRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.TargetRepository {
	if cfg.StorageBackend == "memory" {
		return memory.NewTargetStore()
	}
	return dynamorepo.NewTargetRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
}

// ProvideQuestionRepository creates a question repository. The memory backend
// serves the built-in question set.
func ProvideQuestionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.QuestionRepository {
	if cfg.StorageBackend == "memory" {
		return memory.NewQuestionStore(memory.DefaultQuestions())
	}
	return dynamorepo.NewQuestionRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideResponseRepository creates a response repository
func ProvideResponseRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ResponseRepository {
	if cfg.StorageBackend == "memory" {
		return memory.NewResponseStore()
	}
	return dynamorepo.NewResponseRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideReportLockRepository creates a report lock repository
func ProvideReportLockRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ReportLockRepository {
	if cfg.StorageBackend == "memory" {
		return memory.NewLockStore()
	}
	return dynamorepo.NewReportLockRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideNotificationRepository creates a notification repository
func ProvideNotificationRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.NotificationRepository {
	if cfg.StorageBackend == "memory" {
		return memory.NewNotificationStore()
	}
	return dynamorepo.NewNotificationRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideConnectionRepository creates a connection repository
func ProvideConnectionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ConnectionRepository {
	if cfg.StorageBackend == "memory" {
		return memory.NewConnectionStore()
	}
	return dynamorepo.NewConnectionRepository(client, cfg.ConnectionsTable, logger)
}

// ProvideEventPublisher creates an event publisher. Without an EventBridge
// bus (local development) events are logged instead.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.StorageBackend == "memory" || cfg.EventBusName == "" {
		return messaging.NewLogPublisher(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideHub creates the in-process feed hub backing the SSE endpoint
func ProvideHub(logger *zap.Logger) *realtime.Hub {
	return realtime.NewHub(logger)
}

// ProvideBroadcaster composes the feed broadcasters: always the in-process
// hub, plus the API Gateway path when a WebSocket endpoint is configured.
func ProvideBroadcaster(
	hub *realtime.Hub,
	awsCfg aws.Config,
	connections ports.ConnectionRepository,
	cfg *config.Config,
	logger *zap.Logger,
) ports.Broadcaster {
	if cfg.WebSocketEndpoint == "" {
		return hub
	}
	apigw := realtime.NewAPIGatewayBroadcaster(awsCfg, cfg.WebSocketEndpoint, connections, logger)
	return realtime.NewMultiBroadcaster(hub, apigw)
}

// ProvideRateLimiter creates the fixed-window limiter from configured limits
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	limits := ratelimit.DefaultConfig()
	if cfg.RateLimitLinkGeneration > 0 {
		limits[ratelimit.CategoryLinkGeneration] = ratelimit.Limit{
			Window: limits[ratelimit.CategoryLinkGeneration].Window, MaxRequests: cfg.RateLimitLinkGeneration,
		}
	}
	if cfg.RateLimitVoting > 0 {
		limits[ratelimit.CategoryVoting] = ratelimit.Limit{
			Window: limits[ratelimit.CategoryVoting].Window, MaxRequests: cfg.RateLimitVoting,
		}
	}
	if cfg.RateLimitAPI > 0 {
		limits[ratelimit.CategoryAPI] = ratelimit.Limit{
			Window: limits[ratelimit.CategoryAPI].Window, MaxRequests: cfg.RateLimitAPI,
		}
	}
	return ratelimit.New(limits, ratelimit.NewMemoryStore())
}

// ProvideNotificationService creates the notification service
func ProvideNotificationService(
	notifications ports.NotificationRepository,
	broadcaster ports.Broadcaster,
	cfg *config.Config,
	logger *zap.Logger,
) *services.NotificationService {
	return services.NewNotificationService(notifications, broadcaster, cfg.StoreTimeout, logger)
}

// ProvideReportService creates the report service
func ProvideReportService(
	responses ports.ResponseRepository,
	questions ports.QuestionRepository,
	locks ports.ReportLockRepository,
	notifications *services.NotificationService,
	publisher ports.EventPublisher,
	broadcaster ports.Broadcaster,
	cfg *config.Config,
	logger *zap.Logger,
) *services.ReportService {
	return services.NewReportService(
		responses, questions, locks, notifications,
		publisher, broadcaster,
		cfg.MinimumResponses, cfg.StoreTimeout, logger,
	)
}

// ProvideVoteService creates the vote service
func ProvideVoteService(
	questions ports.QuestionRepository,
	responses ports.ResponseRepository,
	reports *services.ReportService,
	notifications *services.NotificationService,
	publisher ports.EventPublisher,
	broadcaster ports.Broadcaster,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
	logger *zap.Logger,
) *services.VoteService {
	return services.NewVoteService(
		questions, responses, reports, notifications,
		publisher, broadcaster, limiter,
		cfg.StoreTimeout, logger,
	)
}

// ProvideTargetService creates the target service
func ProvideTargetService(
	targets ports.TargetRepository,
	questions ports.QuestionRepository,
	responses ports.ResponseRepository,
	locks ports.ReportLockRepository,
	notifications ports.NotificationRepository,
	publisher ports.EventPublisher,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
	logger *zap.Logger,
) *services.TargetService {
	return services.NewTargetService(
		targets, questions, responses, locks, notifications,
		publisher, limiter,
		cfg.MinimumResponses, cfg.RetentionDays, cfg.StoreTimeout, logger,
	)
}

// ProvideHandler builds the configured HTTP handler
func ProvideHandler(
	targets *services.TargetService,
	votes *services.VoteService,
	reports *services.ReportService,
	notifications *services.NotificationService,
	hub *realtime.Hub,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
	logger *zap.Logger,
) http.Handler {
	router := rest.NewRouter(
		targets, votes, reports, notifications,
		hub, limiter,
		cfg.RateLimitAPI, cfg.CronSecret, cfg.EnableCORS,
		logger,
	)
	return router.Setup()
}
