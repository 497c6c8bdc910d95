package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
	"github.com/jeonghun43/Prism/domain/events"
	"github.com/jeonghun43/Prism/domain/feedback"
	"github.com/jeonghun43/Prism/pkg/common"
	apperrors "github.com/jeonghun43/Prism/pkg/errors"
	"github.com/jeonghun43/Prism/pkg/ratelimit"
)

// VoteService validates and records vote batches. One batch carries every
// answer of a voting pass under a single session token.
type VoteService struct {
	questions    ports.QuestionRepository
	responses    ports.ResponseRepository
	reports      *ReportService
	notifier     *NotificationService
	publisher    ports.EventPublisher
	broadcaster  ports.Broadcaster
	limiter      *ratelimit.Limiter
	logger       *zap.Logger
	storeTimeout time.Duration
	now          func() time.Time
}

// NewVoteService creates a vote service.
func NewVoteService(
	questions ports.QuestionRepository,
	responses ports.ResponseRepository,
	reports *ReportService,
	notifier *NotificationService,
	publisher ports.EventPublisher,
	broadcaster ports.Broadcaster,
	limiter *ratelimit.Limiter,
	storeTimeout time.Duration,
	logger *zap.Logger,
) *VoteService {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &VoteService{
		questions:    questions,
		responses:    responses,
		reports:      reports,
		notifier:     notifier,
		publisher:    publisher,
		broadcaster:  broadcaster,
		limiter:      limiter,
		logger:       logger,
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *VoteService) WithClock(now func() time.Time) *VoteService {
	s.now = now
	return s
}

// Submit records one batch of answers for a target under a session token.
// The write is idempotent per (target, session, question): a session
// re-submitting replaces its prior answers and never changes the distinct
// voter count. After the write the unlock machine runs and either a
// new_response or a report_unlocked notification is emitted, never both.
func (s *VoteService) Submit(ctx context.Context, targetID string, token feedback.SessionToken, answers map[string]int) error {
	if len(answers) == 0 {
		return apperrors.NewValidationError("answers must not be empty")
	}

	result := s.limiter.Check(common.GetCallerKey(ctx), ratelimit.CategoryVoting)
	if !result.Allowed {
		return apperrors.NewRateLimitError(string(ratelimit.CategoryVoting), result.ResetAt)
	}

	questionIDs := make([]string, 0, len(answers))
	for questionID := range answers {
		questionIDs = append(questionIDs, questionID)
	}

	qCtx, qCancel := context.WithTimeout(ctx, s.storeTimeout)
	defer qCancel()

	questions, err := s.questions.GetByIDs(qCtx, questionIDs)
	if err != nil {
		return asStoreError("get questions", err)
	}

	// Tampered input is rejected before anything is written.
	for questionID, optionID := range answers {
		question, ok := questions[questionID]
		if !ok {
			return apperrors.NewValidationError("unknown question").WithDetails(map[string]interface{}{
				"question_id": questionID,
			})
		}
		if !question.HasOption(optionID) {
			return apperrors.NewInvalidOptionError(questionID, optionID)
		}
	}

	now := s.now()
	votes := make([]feedback.VoteRecord, 0, len(answers))
	for questionID, optionID := range answers {
		votes = append(votes, feedback.NewVoteRecord(targetID, questionID, optionID, token, now))
	}

	writeCtx, writeCancel := context.WithTimeout(ctx, s.storeTimeout)
	defer writeCancel()

	// Delete-then-insert per (session, question). The records are keyed by
	// the same triple, so the insert is an upsert and a retry after partial
	// failure cannot double-count the voter.
	if err := s.responses.DeleteBySession(writeCtx, targetID, token, questionIDs); err != nil {
		return asStoreError("delete session responses", err)
	}
	if err := s.responses.SaveBatch(writeCtx, votes); err != nil {
		return asStoreError("save responses", err)
	}

	outcome, err := s.reports.SyncLockState(ctx, targetID)
	if err != nil {
		s.logger.Error("lock evaluation failed after vote write",
			zap.String("targetID", targetID),
			zap.String("sessionToken", token.String()),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("vote batch recorded",
		zap.String("targetID", targetID),
		zap.String("sessionToken", token.String()),
		zap.Int("questions", len(votes)),
		zap.Int("voterCount", outcome.VoterCount),
		zap.Bool("isLocked", outcome.IsLocked),
	)

	// The unlock path already produced its notification inside the state
	// machine; every other accepted batch announces a new response.
	if !outcome.JustUnlocked {
		if err := s.notifier.EmitNewResponse(ctx, targetID, outcome.VoterCount); err != nil {
			s.logger.Error("failed to emit new_response notification",
				zap.String("targetID", targetID),
				zap.Error(err),
			)
		}
	}

	if err := s.publisher.Publish(ctx, events.NewResponseRecorded(targetID, outcome.VoterCount, len(votes), now)); err != nil {
		s.logger.Error("failed to publish response.recorded",
			zap.String("targetID", targetID),
			zap.Error(err),
		)
	}

	if err := s.broadcaster.Broadcast(ctx, ports.FeedMessage{
		Type:     ports.FeedResponseRecorded,
		TargetID: targetID,
		Payload: map[string]interface{}{
			"voter_count": outcome.VoterCount,
			"is_locked":   outcome.IsLocked,
		},
		Timestamp: now,
	}); err != nil {
		s.logger.Warn("failed to broadcast response.recorded",
			zap.String("targetID", targetID),
			zap.Error(err),
		)
	}

	return nil
}
