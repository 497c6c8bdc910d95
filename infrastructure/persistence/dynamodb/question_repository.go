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

// QuestionRepository implements ports.QuestionRepository. The question set is
// managed externally, small and read-heavy, so both operations query the
// shared QUESTION partition and refine in memory.
type QuestionRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewQuestionRepository creates a new QuestionRepository
func NewQuestionRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.QuestionRepository {
	return &QuestionRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// questionItem represents the DynamoDB item structure for a question
type questionItem struct {
	PK         string            `dynamodbav:"PK"`
	SK         string            `dynamodbav:"SK"`
	EntityType string            `dynamodbav:"EntityType"`
	QuestionID string            `dynamodbav:"QuestionID"`
	Text       string            `dynamodbav:"Text"`
	Options    []feedback.Option `dynamodbav:"Options"`
	Category   string            `dynamodbav:"Category"`
	Active     bool              `dynamodbav:"Active"`
	CreatedAt  string            `dynamodbav:"CreatedAt"`
}

func (r *QuestionRepository) queryAll(ctx context.Context) ([]feedback.Question, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: questionPK},
		},
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}

	questions := make([]feedback.Question, 0, len(result.Items))
	for _, raw := range result.Items {
		var item questionItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal question item", zap.Error(err))
			continue
		}
		createdAt, err := time.Parse(time.RFC3339, item.CreatedAt)
		if err != nil {
			r.logger.Warn("Skipping question with malformed CreatedAt",
				zap.String("questionID", item.QuestionID),
				zap.Error(err),
			)
			continue
		}
		questions = append(questions, feedback.Question{
			ID:        item.QuestionID,
			Text:      item.Text,
			Options:   item.Options,
			Category:  item.Category,
			Active:    item.Active,
			CreatedAt: createdAt,
		})
	}

	return questions, nil
}

// ListActive returns active questions ordered by creation time ascending
func (r *QuestionRepository) ListActive(ctx context.Context) ([]feedback.Question, error) {
	all, err := r.queryAll(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]feedback.Question, 0, len(all))
	for _, q := range all {
		if q.Active {
			active = append(active, q)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active, nil
}

// GetByIDs returns the questions with the given ids, keyed by id
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []string) (map[string]feedback.Question, error) {
	all, err := r.queryAll(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	byID := make(map[string]feedback.Question, len(ids))
	for _, q := range all {
		if _, ok := wanted[q.ID]; ok {
			byID[q.ID] = q
		}
	}
	return byID, nil
}
