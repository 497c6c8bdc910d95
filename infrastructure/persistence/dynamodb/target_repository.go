package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
	"github.com/jeonghun43/Prism/domain/feedback"
)

// TargetRepository implements ports.TargetRepository on the single table.
// Nickname lookups go through GSI1 (NICKNAME#<nickname>).
type TargetRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewTargetRepository creates a new TargetRepository
func NewTargetRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.TargetRepository {
	return &TargetRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// targetItem represents the DynamoDB item structure for a target
type targetItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	EntityType string `dynamodbav:"EntityType"`
	TargetID   string `dynamodbav:"TargetID"`
	Nickname   string `dynamodbav:"Nickname"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

func (r *TargetRepository) toItem(target *feedback.Target) targetItem {
	return targetItem{
		PK:         targetPK(target.ID),
		SK:         skMetadata,
		GSI1PK:     nicknameGSI1PK(target.Nickname),
		GSI1SK:     skMetadata,
		EntityType: entityTarget,
		TargetID:   target.ID,
		Nickname:   target.Nickname,
		CreatedAt:  target.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  target.UpdatedAt.Format(time.RFC3339),
	}
}

func (r *TargetRepository) fromItem(item targetItem) (*feedback.Target, error) {
	createdAt, err := time.Parse(time.RFC3339, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt on target %s: %w", item.TargetID, err)
	}
	updatedAt, err := time.Parse(time.RFC3339, item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid UpdatedAt on target %s: %w", item.TargetID, err)
	}
	return &feedback.Target{
		ID:        item.TargetID,
		Nickname:  item.Nickname,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// Save persists a target to DynamoDB
func (r *TargetRepository) Save(ctx context.Context, target *feedback.Target) error {
	av, err := attributevalue.MarshalMap(r.toItem(target))
	if err != nil {
		return fmt.Errorf("failed to marshal target: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save target to DynamoDB",
			zap.Error(err),
			zap.String("targetID", target.ID),
		)
		return fmt.Errorf("failed to save target: %w", err)
	}

	return nil
}

// GetByID retrieves a target by its ID
func (r *TargetRepository) GetByID(ctx context.Context, id string) (*feedback.Target, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: targetPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get target: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item targetItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal target: %w", err)
	}
	return r.fromItem(item)
}

// GetByNickname retrieves a target by its nickname via GSI1
func (r *TargetRepository) GetByNickname(ctx context.Context, nickname string) (*feedback.Target, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: nicknameGSI1PK(nickname)},
			":sk": &types.AttributeValueMemberS{Value: skMetadata},
		},
		Limit: aws.Int32(1),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query target by nickname: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, nil
	}

	var item targetItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal target: %w", err)
	}
	return r.fromItem(item)
}

// ListCreatedBefore scans for targets older than the cutoff. Retention
// cleanup runs off-peak, so the scan is acceptable here.
func (r *TargetRepository) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]*feedback.Target, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(entityTarget)).
		And(expression.Name("CreatedAt").LessThan(expression.Value(cutoff.Format(time.RFC3339))))

	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	var targets []*feedback.Target
	var lastKey map[string]types.AttributeValue
	for {
		input := &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		}

		result, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan targets: %w", err)
		}

		for _, raw := range result.Items {
			var item targetItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal target item", zap.Error(err))
				continue
			}
			target, err := r.fromItem(item)
			if err != nil {
				r.logger.Warn("Skipping malformed target item",
					zap.String("targetID", item.TargetID),
					zap.Error(err),
				)
				continue
			}
			targets = append(targets, target)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	return targets, nil
}

// Delete removes the target metadata row
func (r *TargetRepository) Delete(ctx context.Context, id string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: targetPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("failed to delete target: %w", err)
	}

	r.logger.Debug("Target deleted", zap.String("targetID", id))
	return nil
}
