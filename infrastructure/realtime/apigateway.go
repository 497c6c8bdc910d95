package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwTypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
)

// APIGatewayBroadcaster implements ports.Broadcaster by posting feed messages
// to the WebSocket connections registered for the target. Gone connections
// are evicted from the registry as they are discovered.
type APIGatewayBroadcaster struct {
	client      *apigatewaymanagementapi.Client
	connections ports.ConnectionRepository
	logger      *zap.Logger
}

// NewAPIGatewayBroadcaster creates a broadcaster for the given management
// endpoint, e.g. "https://<api-id>.execute-api.<region>.amazonaws.com/<stage>".
func NewAPIGatewayBroadcaster(
	cfg aws.Config,
	endpoint string,
	connections ports.ConnectionRepository,
	logger *zap.Logger,
) *APIGatewayBroadcaster {
	client := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return &APIGatewayBroadcaster{
		client:      client,
		connections: connections,
		logger:      logger,
	}
}

// Broadcast posts the message to every registered connection of the target
func (b *APIGatewayBroadcaster) Broadcast(ctx context.Context, msg ports.FeedMessage) error {
	conns, err := b.connections.ListByTarget(ctx, msg.TargetID)
	if err != nil {
		return fmt.Errorf("failed to list connections: %w", err)
	}
	if len(conns) == 0 {
		return nil
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal feed message: %w", err)
	}

	failed := 0
	for _, conn := range conns {
		_, err := b.client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
			ConnectionId: aws.String(conn.ConnectionID),
			Data:         data,
		})
		if err != nil {
			var goneErr *apigwTypes.GoneException
			if errors.As(err, &goneErr) {
				if delErr := b.connections.Delete(ctx, conn.ConnectionID); delErr != nil {
					b.logger.Warn("failed to evict gone connection",
						zap.String("connectionID", conn.ConnectionID),
						zap.Error(delErr),
					)
				}
				continue
			}
			b.logger.Warn("failed to post to connection",
				zap.String("connectionID", conn.ConnectionID),
				zap.Error(err),
			)
			failed++
		}
	}

	if failed == len(conns) {
		return fmt.Errorf("all %d connection posts failed", failed)
	}
	return nil
}
