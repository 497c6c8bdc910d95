package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
	"github.com/jeonghun43/Prism/domain/events"
	"github.com/jeonghun43/Prism/domain/feedback"
)

// Report is the aggregated view a target sees: lock state, distinct voter
// count and the ranked tag list. TopTags stays empty while the report is
// locked.
type Report struct {
	IsLocked         bool                  `json:"is_locked"`
	VoterCount       int                   `json:"voter_count"`
	MinimumResponses int                   `json:"minimum_responses"`
	TopTags          []feedback.TagSummary `json:"top_tags"`
}

// LockOutcome is the result of one unlock-machine evaluation.
type LockOutcome struct {
	VoterCount       int
	IsLocked         bool
	MinimumResponses int
	// JustUnlocked is true only for the single evaluation that performed
	// the locked to unlocked write.
	JustUnlocked bool
}

// ReportService computes voter counts and report aggregates and owns the
// unlock state machine. Both the vote-submission path and the report-view
// path go through SyncLockState so the two can never disagree on the rules.
type ReportService struct {
	responses      ports.ResponseRepository
	questions      ports.QuestionRepository
	locks          ports.ReportLockRepository
	notifications  *NotificationService
	publisher      ports.EventPublisher
	broadcaster    ports.Broadcaster
	logger         *zap.Logger
	defaultMinimum int
	storeTimeout   time.Duration
	now            func() time.Time
}

// NewReportService creates a report service.
func NewReportService(
	responses ports.ResponseRepository,
	questions ports.QuestionRepository,
	locks ports.ReportLockRepository,
	notifications *NotificationService,
	publisher ports.EventPublisher,
	broadcaster ports.Broadcaster,
	defaultMinimum int,
	storeTimeout time.Duration,
	logger *zap.Logger,
) *ReportService {
	if defaultMinimum <= 0 {
		defaultMinimum = feedback.DefaultMinimumResponses
	}
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &ReportService{
		responses:      responses,
		questions:      questions,
		locks:          locks,
		notifications:  notifications,
		publisher:      publisher,
		broadcaster:    broadcaster,
		logger:         logger,
		defaultMinimum: defaultMinimum,
		storeTimeout:   storeTimeout,
		now:            time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// CountDistinctVoters returns the number of distinct session tokens that
// have voted for the target. Pure read; a snapshot under concurrent inserts
// is acceptable and the next evaluation converges.
func (s *ReportService) CountDistinctVoters(ctx context.Context, targetID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	votes, err := s.responses.ListByTarget(ctx, targetID)
	if err != nil {
		return 0, asStoreError("list responses", err)
	}
	return feedback.DistinctVoterCount(votes), nil
}

// SyncLockState evaluates the unlock state machine for the target's current
// voter count, persisting the locked to unlocked transition when due. The
// conditional write guards the report_unlocked notification: of any number
// of concurrent evaluators, only the one whose write observed the prior
// locked row emits it.
func (s *ReportService) SyncLockState(ctx context.Context, targetID string) (LockOutcome, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	votes, err := s.responses.ListByTarget(storeCtx, targetID)
	if err != nil {
		return LockOutcome{}, asStoreError("list responses", err)
	}
	return s.syncLockState(ctx, targetID, votes)
}

func (s *ReportService) syncLockState(ctx context.Context, targetID string, votes []feedback.VoteRecord) (LockOutcome, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	voterCount := feedback.DistinctVoterCount(votes)

	lock, err := s.locks.Get(storeCtx, targetID)
	if err != nil {
		return LockOutcome{}, asStoreError("get report lock", err)
	}

	eval, needsWrite := feedback.EvaluateLock(lock, voterCount, s.defaultMinimum)
	outcome := LockOutcome{
		VoterCount:       voterCount,
		IsLocked:         eval.IsLocked,
		MinimumResponses: eval.MinimumResponses,
	}

	if !needsWrite {
		return outcome, nil
	}

	now := s.now()
	flipped, err := s.locks.Unlock(storeCtx, targetID, now)
	if err != nil {
		return outcome, asStoreError("unlock report", err)
	}
	if !flipped {
		// A concurrent evaluator won the write; the state is unlocked
		// either way.
		return outcome, nil
	}

	outcome.JustUnlocked = true
	s.logger.Info("report unlocked",
		zap.String("targetID", targetID),
		zap.Int("voterCount", voterCount),
	)

	if err := s.notifications.EmitUnlock(ctx, targetID, voterCount); err != nil {
		// The unlock itself is durable; a lost notification is tolerable.
		s.logger.Error("failed to emit unlock notification",
			zap.String("targetID", targetID),
			zap.Error(err),
		)
	}

	if err := s.publisher.Publish(ctx, events.NewReportUnlocked(targetID, voterCount, now)); err != nil {
		s.logger.Error("failed to publish report.unlocked",
			zap.String("targetID", targetID),
			zap.Error(err),
		)
	}

	if err := s.broadcaster.Broadcast(ctx, ports.FeedMessage{
		Type:     ports.FeedReportUnlocked,
		TargetID: targetID,
		Payload: map[string]interface{}{
			"voter_count": voterCount,
			"is_locked":   false,
		},
		Timestamp: now,
	}); err != nil {
		s.logger.Warn("failed to broadcast unlock",
			zap.String("targetID", targetID),
			zap.Error(err),
		)
	}

	return outcome, nil
}

// GetReport builds the target's report view. The lock is evaluated through
// the same state machine as the submit path, so viewing a report can also
// materialize a due unlock.
func (s *ReportService) GetReport(ctx context.Context, targetID string) (*Report, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	votes, err := s.responses.ListByTarget(storeCtx, targetID)
	if err != nil {
		return nil, asStoreError("list responses", err)
	}

	outcome, err := s.syncLockState(ctx, targetID, votes)
	if err != nil {
		return nil, err
	}

	report := &Report{
		IsLocked:         outcome.IsLocked,
		VoterCount:       outcome.VoterCount,
		MinimumResponses: outcome.MinimumResponses,
		TopTags:          []feedback.TagSummary{},
	}

	if outcome.IsLocked {
		return report, nil
	}

	questionIDs := make([]string, 0, len(votes))
	seen := make(map[string]struct{}, len(votes))
	for _, v := range votes {
		if _, ok := seen[v.QuestionID]; ok {
			continue
		}
		seen[v.QuestionID] = struct{}{}
		questionIDs = append(questionIDs, v.QuestionID)
	}

	if len(questionIDs) > 0 {
		qCtx, qCancel := context.WithTimeout(ctx, s.storeTimeout)
		defer qCancel()

		questions, err := s.questions.GetByIDs(qCtx, questionIDs)
		if err != nil {
			return nil, asStoreError("get questions", err)
		}
		report.TopTags = feedback.TopTags(votes, questions, feedback.DefaultTopTagLimit)
	}

	return report, nil
}
