package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
	"github.com/jeonghun43/Prism/domain/feedback"
)

// ReportLockRepository implements ports.ReportLockRepository. The unlock flip
// is a conditional UpdateItem: the condition holds only while the stored row
// is still locked, so exactly one concurrent caller observes the transition.
type ReportLockRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewReportLockRepository creates a new ReportLockRepository
func NewReportLockRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ReportLockRepository {
	return &ReportLockRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// lockItem represents the DynamoDB item structure for a report lock
type lockItem struct {
	PK               string `dynamodbav:"PK"`
	SK               string `dynamodbav:"SK"`
	EntityType       string `dynamodbav:"EntityType"`
	TargetID         string `dynamodbav:"TargetID"`
	IsLocked         bool   `dynamodbav:"IsLocked"`
	MinimumResponses int    `dynamodbav:"MinimumResponses"`
	CreatedAt        string `dynamodbav:"CreatedAt"`
	UnlockedAt       string `dynamodbav:"UnlockedAt,omitempty"`
}

// Get retrieves the lock row for a target
func (r *ReportLockRepository) Get(ctx context.Context, targetID string) (*feedback.ReportLock, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: targetPK(targetID)},
			"SK": &types.AttributeValueMemberS{Value: skLock},
		},
		ConsistentRead: aws.Bool(true),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get report lock: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item lockItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report lock: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt on lock for %s: %w", targetID, err)
	}

	lock := &feedback.ReportLock{
		TargetID:         item.TargetID,
		IsLocked:         item.IsLocked,
		MinimumResponses: item.MinimumResponses,
		CreatedAt:        createdAt,
	}
	if item.UnlockedAt != "" {
		unlockedAt, err := time.Parse(time.RFC3339, item.UnlockedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid UnlockedAt on lock for %s: %w", targetID, err)
		}
		lock.UnlockedAt = &unlockedAt
	}
	return lock, nil
}

// Create persists the initial locked row for a target
func (r *ReportLockRepository) Create(ctx context.Context, lock feedback.ReportLock) error {
	item := lockItem{
		PK:               targetPK(lock.TargetID),
		SK:               skLock,
		EntityType:       entityLock,
		TargetID:         lock.TargetID,
		IsLocked:         lock.IsLocked,
		MinimumResponses: lock.MinimumResponses,
		CreatedAt:        lock.CreatedAt.Format(time.RFC3339),
	}
	if lock.UnlockedAt != nil {
		item.UnlockedAt = lock.UnlockedAt.Format(time.RFC3339)
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal report lock: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			// Row already exists; the existing lock state wins.
			return nil
		}
		return fmt.Errorf("failed to create report lock: %w", err)
	}
	return nil
}

// Unlock conditionally flips the row to unlocked and reports whether this
// call performed the flip
func (r *ReportLockRepository) Unlock(ctx context.Context, targetID string, unlockedAt time.Time) (bool, error) {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: targetPK(targetID)},
			"SK": &types.AttributeValueMemberS{Value: skLock},
		},
		UpdateExpression:    aws.String("SET IsLocked = :unlocked, UnlockedAt = :unlockedAt"),
		ConditionExpression: aws.String("attribute_exists(PK) AND IsLocked = :locked"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":unlocked":   &types.AttributeValueMemberBOOL{Value: false},
			":locked":     &types.AttributeValueMemberBOOL{Value: true},
			":unlockedAt": &types.AttributeValueMemberS{Value: unlockedAt.Format(time.RFC3339)},
		},
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			// Already unlocked, or no row to flip. Either way the caller
			// did not perform the transition.
			return false, nil
		}
		return false, fmt.Errorf("failed to unlock report: %w", err)
	}

	r.logger.Debug("Report lock flipped to unlocked",
		zap.String("targetID", targetID),
	)
	return true, nil
}

// DeleteByTarget removes the lock row
func (r *ReportLockRepository) DeleteByTarget(ctx context.Context, targetID string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: targetPK(targetID)},
			"SK": &types.AttributeValueMemberS{Value: skLock},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("failed to delete report lock: %w", err)
	}
	return nil
}
