package feedback

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationType distinguishes the two state-changing actions that produce
// a notification.
type NotificationType string

const (
	NotificationNewResponse    NotificationType = "new_response"
	NotificationReportUnlocked NotificationType = "report_unlocked"
)

// NotificationMetadata is the structured payload attached to a notification.
type NotificationMetadata struct {
	VoterCount int  `json:"voter_count"`
	IsUnlocked bool `json:"is_unlocked"`
}

// Notification is one entry of a target's append-only delivery log. Only the
// read flag is ever mutated.
type Notification struct {
	ID        string               `json:"id"`
	TargetID  string               `json:"target_id"`
	Type      NotificationType     `json:"type"`
	Message   string               `json:"message"`
	Metadata  NotificationMetadata `json:"metadata"`
	IsRead    bool                 `json:"is_read"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewResponseNotification builds the notification for an accepted vote batch.
func NewResponseNotification(targetID string, voterCount int, now time.Time) Notification {
	return Notification{
		ID:       uuid.New().String(),
		TargetID: targetID,
		Type:     NotificationNewResponse,
		Message:  fmt.Sprintf("새로운 응답이 도착했습니다! 현재 %d명이 응답했습니다.", voterCount),
		Metadata: NotificationMetadata{
			VoterCount: voterCount,
			IsUnlocked: false,
		},
		CreatedAt: now,
	}
}

// NewUnlockNotification builds the notification for the report unlock
// transition.
func NewUnlockNotification(targetID string, voterCount int, now time.Time) Notification {
	return Notification{
		ID:       uuid.New().String(),
		TargetID: targetID,
		Type:     NotificationReportUnlocked,
		Message:  fmt.Sprintf("축하합니다! 리포트가 잠금 해제되었습니다. %d명의 응답을 받았어요.", voterCount),
		Metadata: NotificationMetadata{
			VoterCount: voterCount,
			IsUnlocked: true,
		},
		CreatedAt: now,
	}
}
