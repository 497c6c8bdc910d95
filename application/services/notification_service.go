package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
	"github.com/jeonghun43/Prism/domain/feedback"
)

// DefaultNotificationLimit bounds ListRecent when the caller asks for none.
const DefaultNotificationLimit = 10

// MaxNotificationLimit caps a single listing.
const MaxNotificationLimit = 50

// NotificationService appends to and reads from a target's notification log
// and mirrors every append onto the subscription feed.
type NotificationService struct {
	notifications ports.NotificationRepository
	broadcaster   ports.Broadcaster
	logger        *zap.Logger
	storeTimeout  time.Duration
	now           func() time.Time
}

// NewNotificationService creates a notification service.
func NewNotificationService(
	notifications ports.NotificationRepository,
	broadcaster ports.Broadcaster,
	storeTimeout time.Duration,
	logger *zap.Logger,
) *NotificationService {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &NotificationService{
		notifications: notifications,
		broadcaster:   broadcaster,
		logger:        logger,
		storeTimeout:  storeTimeout,
		now:           time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *NotificationService) WithClock(now func() time.Time) *NotificationService {
	s.now = now
	return s
}

// EmitNewResponse appends the notification for an accepted vote batch.
func (s *NotificationService) EmitNewResponse(ctx context.Context, targetID string, voterCount int) error {
	return s.emit(ctx, feedback.NewResponseNotification(targetID, voterCount, s.now()))
}

// EmitUnlock appends the one-time report unlock notification.
func (s *NotificationService) EmitUnlock(ctx context.Context, targetID string, voterCount int) error {
	return s.emit(ctx, feedback.NewUnlockNotification(targetID, voterCount, s.now()))
}

func (s *NotificationService) emit(ctx context.Context, notification feedback.Notification) error {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.notifications.Append(storeCtx, notification); err != nil {
		return asStoreError("append notification", err)
	}

	if err := s.broadcaster.Broadcast(ctx, ports.FeedMessage{
		Type:     ports.FeedNotificationCreated,
		TargetID: notification.TargetID,
		Payload: map[string]interface{}{
			"type":        string(notification.Type),
			"message":     notification.Message,
			"voter_count": notification.Metadata.VoterCount,
			"is_unlocked": notification.Metadata.IsUnlocked,
		},
		Timestamp: notification.CreatedAt,
	}); err != nil {
		s.logger.Warn("failed to broadcast notification",
			zap.String("targetID", notification.TargetID),
			zap.Error(err),
		)
	}

	return nil
}

// ListRecent returns the target's newest notifications.
func (s *NotificationService) ListRecent(ctx context.Context, targetID string, limit int, unreadOnly bool) ([]feedback.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	list, err := s.notifications.ListRecent(storeCtx, targetID, limit, unreadOnly)
	if err != nil {
		return nil, asStoreError("list notifications", err)
	}
	return list, nil
}

// MarkRead flags the given notifications as read; with no ids it marks the
// whole log read.
func (s *NotificationService) MarkRead(ctx context.Context, targetID string, ids []string) error {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if len(ids) == 0 {
		if err := s.notifications.MarkAllRead(storeCtx, targetID); err != nil {
			return asStoreError("mark all notifications read", err)
		}
		return nil
	}
	if err := s.notifications.MarkRead(storeCtx, targetID, ids); err != nil {
		return asStoreError("mark notifications read", err)
	}
	return nil
}
