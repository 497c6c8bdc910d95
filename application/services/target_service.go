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

// DefaultRetentionDays is how long a target and its data are kept.
const DefaultRetentionDays = 7

// CreateTargetResult reports whether the link generation created a new
// target or reused the row already holding the nickname.
type CreateTargetResult struct {
	Target  *feedback.Target
	Created bool
}

// VotingPage is everything a voter needs for one voting pass: the target,
// the active question set and a freshly issued session token. Tokens are
// never persisted on issue; they only materialize in vote records.
type VotingPage struct {
	Target       *feedback.Target      `json:"target"`
	Questions    []feedback.Question   `json:"questions"`
	SessionToken feedback.SessionToken `json:"session_token"`
}

// TargetService manages the target lifecycle: link generation, voting page
// assembly and retention cleanup.
type TargetService struct {
	targets        ports.TargetRepository
	questions      ports.QuestionRepository
	responses      ports.ResponseRepository
	locks          ports.ReportLockRepository
	notifications  ports.NotificationRepository
	publisher      ports.EventPublisher
	limiter        *ratelimit.Limiter
	logger         *zap.Logger
	defaultMinimum int
	retentionDays  int
	storeTimeout   time.Duration
	now            func() time.Time
}

// NewTargetService creates a target service.
func NewTargetService(
	targets ports.TargetRepository,
	questions ports.QuestionRepository,
	responses ports.ResponseRepository,
	locks ports.ReportLockRepository,
	notifications ports.NotificationRepository,
	publisher ports.EventPublisher,
	limiter *ratelimit.Limiter,
	defaultMinimum int,
	retentionDays int,
	storeTimeout time.Duration,
	logger *zap.Logger,
) *TargetService {
	if defaultMinimum <= 0 {
		defaultMinimum = feedback.DefaultMinimumResponses
	}
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &TargetService{
		targets:        targets,
		questions:      questions,
		responses:      responses,
		locks:          locks,
		notifications:  notifications,
		publisher:      publisher,
		limiter:        limiter,
		logger:         logger,
		defaultMinimum: defaultMinimum,
		retentionDays:  retentionDays,
		storeTimeout:   storeTimeout,
		now:            time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *TargetService) WithClock(now func() time.Time) *TargetService {
	s.now = now
	return s
}

// CreateTarget generates a feedback link for a nickname. Nicknames are
// unique: asking again for an existing nickname returns the existing target
// with Created false, so regenerating a link is harmless.
func (s *TargetService) CreateTarget(ctx context.Context, nickname string) (*CreateTargetResult, error) {
	result := s.limiter.Check(common.GetCallerKey(ctx), ratelimit.CategoryLinkGeneration)
	if !result.Allowed {
		return nil, apperrors.NewRateLimitError(string(ratelimit.CategoryLinkGeneration), result.ResetAt)
	}

	normalized := feedback.NormalizeNickname(nickname)
	if err := feedback.ValidateNickname(normalized); err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	existing, err := s.targets.GetByNickname(storeCtx, normalized)
	if err != nil {
		return nil, asStoreError("get target by nickname", err)
	}
	if existing != nil {
		return &CreateTargetResult{Target: existing, Created: false}, nil
	}

	now := s.now()
	target, err := feedback.NewTarget(normalized, now)
	if err != nil {
		return nil, err
	}
	if err := s.targets.Save(storeCtx, target); err != nil {
		return nil, asStoreError("save target", err)
	}

	// The lock row is created eagerly so the report starts out locked. A
	// failure here is recoverable: the unlock machine falls back to the
	// default minimum when no row exists.
	lock := feedback.NewReportLock(target.ID, s.defaultMinimum, now)
	if err := s.locks.Create(storeCtx, lock); err != nil {
		s.logger.Warn("failed to create report lock for new target",
			zap.String("targetID", target.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("target created",
		zap.String("targetID", target.ID),
		zap.String("nickname", target.Nickname),
	)

	if err := s.publisher.Publish(ctx, events.NewTargetCreated(target.ID, target.Nickname, now)); err != nil {
		s.logger.Error("failed to publish target.created",
			zap.String("targetID", target.ID),
			zap.Error(err),
		)
	}

	return &CreateTargetResult{Target: target, Created: true}, nil
}

// GetByNickname resolves a shared link's nickname to its target.
func (s *TargetService) GetByNickname(ctx context.Context, nickname string) (*feedback.Target, error) {
	normalized := feedback.NormalizeNickname(nickname)

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	target, err := s.targets.GetByNickname(storeCtx, normalized)
	if err != nil {
		return nil, asStoreError("get target by nickname", err)
	}
	if target == nil {
		return nil, apperrors.NewNotFoundError("target", nickname)
	}
	return target, nil
}

// GetByID resolves a target id.
func (s *TargetService) GetByID(ctx context.Context, id string) (*feedback.Target, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	target, err := s.targets.GetByID(storeCtx, id)
	if err != nil {
		return nil, asStoreError("get target", err)
	}
	if target == nil {
		return nil, apperrors.NewNotFoundError("target", id)
	}
	return target, nil
}

// GetVotingPage assembles the voting page for a shared link. Every call
// issues a fresh session token; the voter counts once per token, not once
// per person, which is the accepted trade of an unauthenticated flow.
func (s *TargetService) GetVotingPage(ctx context.Context, nickname string) (*VotingPage, error) {
	target, err := s.GetByNickname(ctx, nickname)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	questions, err := s.questions.ListActive(storeCtx)
	if err != nil {
		return nil, asStoreError("list questions", err)
	}

	return &VotingPage{
		Target:       target,
		Questions:    questions,
		SessionToken: feedback.NewSessionToken(),
	}, nil
}

// ListQuestions returns the active question set.
func (s *TargetService) ListQuestions(ctx context.Context) ([]feedback.Question, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	questions, err := s.questions.ListActive(storeCtx)
	if err != nil {
		return nil, asStoreError("list questions", err)
	}
	return questions, nil
}

// DeleteExpired removes targets older than the retention window together
// with their responses, lock row and notifications. Returns the number of
// targets removed. Failures on individual targets are logged and skipped so
// one bad row cannot stall the sweep.
func (s *TargetService) DeleteExpired(ctx context.Context) (int, error) {
	cutoff := s.now().AddDate(0, 0, -s.retentionDays)

	listCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	expired, err := s.targets.ListCreatedBefore(listCtx, cutoff)
	if err != nil {
		return 0, asStoreError("list expired targets", err)
	}

	deleted := 0
	for _, target := range expired {
		if err := s.deleteTarget(ctx, target.ID); err != nil {
			s.logger.Error("failed to delete expired target",
				zap.String("targetID", target.ID),
				zap.Error(err),
			)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Info("retention cleanup completed",
			zap.Int("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return deleted, nil
}

func (s *TargetService) deleteTarget(ctx context.Context, targetID string) error {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	// Dependent rows first so a partial failure leaves the target row
	// discoverable by the next sweep.
	if err := s.responses.DeleteByTarget(storeCtx, targetID); err != nil {
		return asStoreError("delete responses", err)
	}
	if err := s.notifications.DeleteByTarget(storeCtx, targetID); err != nil {
		return asStoreError("delete notifications", err)
	}
	if err := s.locks.DeleteByTarget(storeCtx, targetID); err != nil {
		return asStoreError("delete report lock", err)
	}
	if err := s.targets.Delete(storeCtx, targetID); err != nil {
		return asStoreError("delete target", err)
	}
	return nil
}
