package ports

import (
	"context"
	"time"

	"github.com/jeonghun43/Prism/domain/events"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// FeedMessage is one push-style update on a target's subscription feed.
// Delivery is at-least-once and ordering across message types is not
// guaranteed; payloads therefore carry absolute state (current voter count,
// current lock state), never deltas.
type FeedMessage struct {
	Type      string                 `json:"type"`
	TargetID  string                 `json:"target_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Feed message types.
const (
	FeedResponseRecorded    = "response.recorded"
	FeedReportUnlocked      = "report.unlocked"
	FeedNotificationCreated = "notification.created"
)

// Broadcaster pushes feed messages to every subscriber of the message's
// target. Best effort: a failed delivery is logged, never surfaced to the
// write path that triggered it.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg FeedMessage) error
}
