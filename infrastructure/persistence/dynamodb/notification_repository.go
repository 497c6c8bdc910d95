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

// NotificationRepository implements ports.NotificationRepository. The sort
// key embeds the nanosecond creation time, so a descending query returns the
// log newest first without a separate index.
type NotificationRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.NotificationRepository {
	return &NotificationRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// notificationItem represents the DynamoDB item structure for a notification
type notificationItem struct {
	PK             string `dynamodbav:"PK"`
	SK             string `dynamodbav:"SK"`
	EntityType     string `dynamodbav:"EntityType"`
	NotificationID string `dynamodbav:"NotificationID"`
	TargetID       string `dynamodbav:"TargetID"`
	Type           string `dynamodbav:"Type"`
	Message        string `dynamodbav:"Message"`
	VoterCount     int    `dynamodbav:"VoterCount"`
	IsUnlocked     bool   `dynamodbav:"IsUnlocked"`
	IsRead         bool   `dynamodbav:"IsRead"`
	CreatedAt      string `dynamodbav:"CreatedAt"`
}

func (r *NotificationRepository) fromItem(item notificationItem) (feedback.Notification, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return feedback.Notification{}, fmt.Errorf("invalid CreatedAt on notification %s: %w", item.NotificationID, err)
	}
	return feedback.Notification{
		ID:       item.NotificationID,
		TargetID: item.TargetID,
		Type:     feedback.NotificationType(item.Type),
		Message:  item.Message,
		Metadata: feedback.NotificationMetadata{
			VoterCount: item.VoterCount,
			IsUnlocked: item.IsUnlocked,
		},
		IsRead:    item.IsRead,
		CreatedAt: createdAt,
	}, nil
}

// Append stores one notification
func (r *NotificationRepository) Append(ctx context.Context, notification feedback.Notification) error {
	createdAt := notification.CreatedAt.UTC().Format(timeFormatNano)
	item := notificationItem{
		PK:             targetPK(notification.TargetID),
		SK:             notifSK(createdAt, notification.ID),
		EntityType:     entityNotif,
		NotificationID: notification.ID,
		TargetID:       notification.TargetID,
		Type:           string(notification.Type),
		Message:        notification.Message,
		VoterCount:     notification.Metadata.VoterCount,
		IsUnlocked:     notification.Metadata.IsUnlocked,
		IsRead:         notification.IsRead,
		CreatedAt:      createdAt,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to append notification",
			zap.Error(err),
			zap.String("targetID", notification.TargetID),
		)
		return fmt.Errorf("failed to append notification: %w", err)
	}
	return nil
}

// ListRecent returns up to limit notifications, newest first
func (r *NotificationRepository) ListRecent(ctx context.Context, targetID string, limit int, unreadOnly bool) ([]feedback.Notification, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(targetPK(targetID))).
		And(expression.Key("SK").BeginsWith(notifPrefix))

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if unreadOnly {
		builder = builder.WithFilter(expression.Name("IsRead").Equal(expression.Value(false)))
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build notification query: %w", err)
	}

	notifications := make([]feedback.Notification, 0, limit)
	var lastKey map[string]types.AttributeValue
	for len(notifications) < limit {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(false),
			ExclusiveStartKey:         lastKey,
		}

		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query notifications: %w", err)
		}

		for _, raw := range result.Items {
			if len(notifications) == limit {
				break
			}
			var item notificationItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal notification item", zap.Error(err))
				continue
			}
			notification, err := r.fromItem(item)
			if err != nil {
				r.logger.Warn("Skipping malformed notification item",
					zap.String("notificationID", item.NotificationID),
					zap.Error(err),
				)
				continue
			}
			notifications = append(notifications, notification)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	return notifications, nil
}

// MarkRead flags the given notifications as read
func (r *NotificationRepository) MarkRead(ctx context.Context, targetID string, ids []string) error {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	return r.markRead(ctx, targetID, func(item notificationItem) bool {
		_, ok := wanted[item.NotificationID]
		return ok
	})
}

// MarkAllRead flags every unread notification of the target as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, targetID string) error {
	return r.markRead(ctx, targetID, func(notificationItem) bool { return true })
}

// markRead walks the target's unread notifications and flips matching rows.
// The log is short (retention trims it weekly), so per-row updates are fine.
func (r *NotificationRepository) markRead(ctx context.Context, targetID string, match func(notificationItem) bool) error {
	items, err := r.listItems(ctx, targetID)
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.IsRead || !match(item) {
			continue
		}
		input := &dynamodb.UpdateItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: item.PK},
				"SK": &types.AttributeValueMemberS{Value: item.SK},
			},
			UpdateExpression: aws.String("SET IsRead = :read"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":read": &types.AttributeValueMemberBOOL{Value: true},
			},
		}
		if _, err := r.client.UpdateItem(ctx, input); err != nil {
			return fmt.Errorf("failed to mark notification read: %w", err)
		}
	}
	return nil
}

// DeleteByTarget removes all notifications of a target
func (r *NotificationRepository) DeleteByTarget(ctx context.Context, targetID string) error {
	items, err := r.listItems(ctx, targetID)
	if err != nil {
		return err
	}

	for _, item := range items {
		input := &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: item.PK},
				"SK": &types.AttributeValueMemberS{Value: item.SK},
			},
		}
		if _, err := r.client.DeleteItem(ctx, input); err != nil {
			return fmt.Errorf("failed to delete notification: %w", err)
		}
	}
	return nil
}

func (r *NotificationRepository) listItems(ctx context.Context, targetID string) ([]notificationItem, error) {
	var items []notificationItem
	var lastKey map[string]types.AttributeValue
	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: targetPK(targetID)},
				":sk": &types.AttributeValueMemberS{Value: notifPrefix},
			},
			ExclusiveStartKey: lastKey,
		}

		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query notifications: %w", err)
		}

		for _, raw := range result.Items {
			var item notificationItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal notification item", zap.Error(err))
				continue
			}
			items = append(items, item)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}
	return items, nil
}
