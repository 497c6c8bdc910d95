// Package ports declares the interfaces the application layer depends on.
// These are ports in hexagonal architecture - the domain doesn't know about
// the implementation behind them.
package ports

import (
	"context"
	"time"

	"github.com/jeonghun43/Prism/domain/feedback"
)

// TargetRepository defines the interface for target persistence
type TargetRepository interface {
	// Save persists a target (create or update)
	Save(ctx context.Context, target *feedback.Target) error

	// GetByID retrieves a target by its ID
	GetByID(ctx context.Context, id string) (*feedback.Target, error)

	// GetByNickname retrieves a target by its unique display handle.
	// Returns (nil, nil) when no target owns the nickname.
	GetByNickname(ctx context.Context, nickname string) (*feedback.Target, error)

	// ListCreatedBefore retrieves targets created before the cutoff,
	// for retention cleanup.
	ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]*feedback.Target, error)

	// Delete removes a target row. Dependent rows are removed by the caller.
	Delete(ctx context.Context, id string) error
}

// QuestionRepository provides read-only access to the externally managed
// question set.
type QuestionRepository interface {
	// ListActive returns active questions ordered by creation time ascending.
	ListActive(ctx context.Context) ([]feedback.Question, error)

	// GetByIDs returns the questions with the given ids, keyed by id.
	// Unknown ids are simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) (map[string]feedback.Question, error)
}

// ResponseRepository defines the interface for vote record persistence
type ResponseRepository interface {
	// SaveBatch upserts one record per answered question. Records are keyed
	// by (target, session token, question), so a retry or a re-vote from the
	// same session overwrites rather than duplicates.
	SaveBatch(ctx context.Context, votes []feedback.VoteRecord) error

	// DeleteBySession removes the session's records for the given questions.
	DeleteBySession(ctx context.Context, targetID string, token feedback.SessionToken, questionIDs []string) error

	// ListByTarget returns all records for a target, newest first. Snapshot
	// read; brief staleness under concurrent writes is acceptable.
	ListByTarget(ctx context.Context, targetID string) ([]feedback.VoteRecord, error)

	// DeleteByTarget removes every record of a target (retention cleanup).
	DeleteByTarget(ctx context.Context, targetID string) error
}

// ReportLockRepository defines the interface for unlock state persistence
type ReportLockRepository interface {
	// Get retrieves the lock row for a target. Returns (nil, nil) when no
	// row exists yet.
	Get(ctx context.Context, targetID string) (*feedback.ReportLock, error)

	// Create persists the initial locked row for a target.
	Create(ctx context.Context, lock feedback.ReportLock) error

	// Unlock conditionally flips the row to unlocked. It succeeds only when
	// the stored row is still locked and reports whether this call performed
	// the flip, so concurrent evaluators converge without emitting the
	// unlock notification twice.
	Unlock(ctx context.Context, targetID string, unlockedAt time.Time) (bool, error)

	// DeleteByTarget removes the lock row (retention cleanup).
	DeleteByTarget(ctx context.Context, targetID string) error
}

// NotificationRepository defines the interface for the append-only
// notification log.
type NotificationRepository interface {
	// Append stores one notification.
	Append(ctx context.Context, notification feedback.Notification) error

	// ListRecent returns up to limit notifications, newest first.
	ListRecent(ctx context.Context, targetID string, limit int, unreadOnly bool) ([]feedback.Notification, error)

	// MarkRead flags the given notifications as read.
	MarkRead(ctx context.Context, targetID string, ids []string) error

	// MarkAllRead flags every unread notification of the target as read.
	MarkAllRead(ctx context.Context, targetID string) error

	// DeleteByTarget removes all notifications of a target (retention cleanup).
	DeleteByTarget(ctx context.Context, targetID string) error
}

// Connection is one registered WebSocket subscriber of a target's feed.
type Connection struct {
	ConnectionID string    `json:"connection_id"`
	TargetID     string    `json:"target_id"`
	Endpoint     string    `json:"endpoint"`
	ConnectedAt  time.Time `json:"connected_at"`
	TTL          int64     `json:"ttl"`
}

// ConnectionRepository stores the WebSocket connection registry used by the
// API Gateway broadcaster.
type ConnectionRepository interface {
	// Save registers a connection.
	Save(ctx context.Context, conn Connection) error

	// ListByTarget returns the connections subscribed to a target.
	ListByTarget(ctx context.Context, targetID string) ([]Connection, error)

	// Delete removes a connection by id.
	Delete(ctx context.Context, connectionID string) error
}
