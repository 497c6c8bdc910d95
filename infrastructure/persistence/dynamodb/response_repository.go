package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
	"github.com/jeonghun43/Prism/domain/feedback"
)

// batchWriteMax is DynamoDB's BatchWriteItem request limit.
const batchWriteMax = 25

// ResponseRepository implements ports.ResponseRepository. Records are keyed
// RESPONSE#<session>#<question>, so a PutItem on the same key is the upsert
// the idempotent re-vote relies on.
type ResponseRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewResponseRepository creates a new ResponseRepository
func NewResponseRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ResponseRepository {
	return &ResponseRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// responseItem represents the DynamoDB item structure for a vote record
type responseItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	EntityType   string `dynamodbav:"EntityType"`
	ResponseID   string `dynamodbav:"ResponseID"`
	TargetID     string `dynamodbav:"TargetID"`
	QuestionID   string `dynamodbav:"QuestionID"`
	OptionID     int    `dynamodbav:"OptionID"`
	SessionToken string `dynamodbav:"SessionToken"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
}

// SaveBatch upserts one item per vote record
func (r *ResponseRepository) SaveBatch(ctx context.Context, votes []feedback.VoteRecord) error {
	writes := make([]types.WriteRequest, 0, len(votes))
	for _, vote := range votes {
		item := responseItem{
			PK:           targetPK(vote.TargetID),
			SK:           responseSK(vote.SessionToken.String(), vote.QuestionID),
			EntityType:   entityResponse,
			ResponseID:   vote.ID,
			TargetID:     vote.TargetID,
			QuestionID:   vote.QuestionID,
			OptionID:     vote.OptionID,
			SessionToken: vote.SessionToken.String(),
			CreatedAt:    vote.CreatedAt.Format(time.RFC3339),
		}
		av, err := attributevalue.MarshalMap(item)
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		writes = append(writes, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: av},
		})
	}

	return r.batchWrite(ctx, writes)
}

// DeleteBySession removes the session's records for the given questions
func (r *ResponseRepository) DeleteBySession(ctx context.Context, targetID string, token feedback.SessionToken, questionIDs []string) error {
	writes := make([]types.WriteRequest, 0, len(questionIDs))
	for _, questionID := range questionIDs {
		writes = append(writes, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: targetPK(targetID)},
					"SK": &types.AttributeValueMemberS{Value: responseSK(token.String(), questionID)},
				},
			},
		})
	}

	return r.batchWrite(ctx, writes)
}

// ListByTarget returns all records for a target, newest first
func (r *ResponseRepository) ListByTarget(ctx context.Context, targetID string) ([]feedback.VoteRecord, error) {
	var votes []feedback.VoteRecord
	var lastKey map[string]types.AttributeValue
	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: targetPK(targetID)},
				":sk": &types.AttributeValueMemberS{Value: responsePrefix},
			},
			ExclusiveStartKey: lastKey,
		}

		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query responses: %w", err)
		}

		for _, raw := range result.Items {
			var item responseItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal response item", zap.Error(err))
				continue
			}
			createdAt, err := time.Parse(time.RFC3339, item.CreatedAt)
			if err != nil {
				r.logger.Warn("Skipping response with malformed CreatedAt",
					zap.String("responseID", item.ResponseID),
					zap.Error(err),
				)
				continue
			}
			votes = append(votes, feedback.VoteRecord{
				ID:           item.ResponseID,
				TargetID:     item.TargetID,
				QuestionID:   item.QuestionID,
				OptionID:     item.OptionID,
				SessionToken: feedback.SessionToken(item.SessionToken),
				CreatedAt:    createdAt,
			})
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	// The sort key orders by session, not time.
	sort.SliceStable(votes, func(i, j int) bool {
		return votes[i].CreatedAt.After(votes[j].CreatedAt)
	})
	return votes, nil
}

// DeleteByTarget removes every record of a target
func (r *ResponseRepository) DeleteByTarget(ctx context.Context, targetID string) error {
	votes, err := r.ListByTarget(ctx, targetID)
	if err != nil {
		return err
	}

	writes := make([]types.WriteRequest, 0, len(votes))
	for _, vote := range votes {
		writes = append(writes, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: targetPK(targetID)},
					"SK": &types.AttributeValueMemberS{Value: responseSK(vote.SessionToken.String(), vote.QuestionID)},
				},
			},
		})
	}

	return r.batchWrite(ctx, writes)
}

// batchWrite submits write requests in chunks of 25 and retries unprocessed
// items once per chunk.
func (r *ResponseRepository) batchWrite(ctx context.Context, writes []types.WriteRequest) error {
	for start := 0; start < len(writes); start += batchWriteMax {
		end := start + batchWriteMax
		if end > len(writes) {
			end = len(writes)
		}

		pending := writes[start:end]
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt > 1 {
				return fmt.Errorf("batch write left %d unprocessed items", len(pending))
			}

			output, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{
					r.tableName: pending,
				},
			})
			if err != nil {
				return fmt.Errorf("failed to batch write responses: %w", err)
			}
			pending = output.UnprocessedItems[r.tableName]
		}
	}
	return nil
}
