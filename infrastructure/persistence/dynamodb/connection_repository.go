package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
)

// connectionTargetIndex is the GSI used to fan a broadcast out to every
// connection subscribed to a target.
const connectionTargetIndex = "TargetIndex"

// ConnectionRepository implements ports.ConnectionRepository on the
// dedicated connections table. Rows carry a TTL so stale connections age out
// even when the disconnect handler never fires.
type ConnectionRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ConnectionRepository {
	return &ConnectionRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// connectionItem represents the DynamoDB item structure for a connection
type connectionItem struct {
	ConnectionID string `dynamodbav:"ConnectionID"`
	TargetID     string `dynamodbav:"TargetID"`
	Endpoint     string `dynamodbav:"Endpoint"`
	ConnectedAt  string `dynamodbav:"ConnectedAt"`
	TTL          int64  `dynamodbav:"TTL"`
}

// Save registers a connection
func (r *ConnectionRepository) Save(ctx context.Context, conn ports.Connection) error {
	item := connectionItem{
		ConnectionID: conn.ConnectionID,
		TargetID:     conn.TargetID,
		Endpoint:     conn.Endpoint,
		ConnectedAt:  conn.ConnectedAt.Format(time.RFC3339),
		TTL:          conn.TTL,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("failed to save connection: %w", err)
	}

	r.logger.Debug("Connection registered",
		zap.String("connectionID", conn.ConnectionID),
		zap.String("targetID", conn.TargetID),
	)
	return nil
}

// ListByTarget returns the connections subscribed to a target
func (r *ConnectionRepository) ListByTarget(ctx context.Context, targetID string) ([]ports.Connection, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(connectionTargetIndex),
		KeyConditionExpression: aws.String("TargetID = :targetID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":targetID": &types.AttributeValueMemberS{Value: targetID},
		},
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}

	connections := make([]ports.Connection, 0, len(result.Items))
	for _, raw := range result.Items {
		var item connectionItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal connection item", zap.Error(err))
			continue
		}
		connectedAt, err := time.Parse(time.RFC3339, item.ConnectedAt)
		if err != nil {
			connectedAt = time.Time{}
		}
		connections = append(connections, ports.Connection{
			ConnectionID: item.ConnectionID,
			TargetID:     item.TargetID,
			Endpoint:     item.Endpoint,
			ConnectedAt:  connectedAt,
			TTL:          item.TTL,
		})
	}
	return connections, nil
}

// Delete removes a connection by id
func (r *ConnectionRepository) Delete(ctx context.Context, connectionID string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"ConnectionID": &types.AttributeValueMemberS{Value: connectionID},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	return nil
}
