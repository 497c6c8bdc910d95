// Package events defines the domain events this service publishes. Delivery
// downstream is at-least-once; consumers must tolerate duplicates.
package events

import "time"

// SourceService is the event source attached to published events.
const SourceService = "prism.feedback"

// Event type names.
const (
	TypeTargetCreated    = "target.created"
	TypeResponseRecorded = "response.recorded"
	TypeReportUnlocked   = "report.unlocked"
)

// DomainEvent is the base interface for all domain events.
// Events represent something that has happened in the past.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// TargetCreated is raised when a feedback link is generated for a new target.
type TargetCreated struct {
	BaseEvent
	TargetID string `json:"target_id"`
	Nickname string `json:"nickname"`
}

// NewTargetCreated creates a TargetCreated event
func NewTargetCreated(targetID, nickname string, timestamp time.Time) TargetCreated {
	return TargetCreated{
		BaseEvent: BaseEvent{
			AggregateID: targetID,
			EventType:   TypeTargetCreated,
			Timestamp:   timestamp,
		},
		TargetID: targetID,
		Nickname: nickname,
	}
}

// ResponseRecorded is raised when a vote batch is accepted. VoterCount is the
// distinct voter count observed right after the write.
type ResponseRecorded struct {
	BaseEvent
	TargetID   string `json:"target_id"`
	VoterCount int    `json:"voter_count"`
	Questions  int    `json:"questions"`
}

// NewResponseRecorded creates a ResponseRecorded event
func NewResponseRecorded(targetID string, voterCount, questions int, timestamp time.Time) ResponseRecorded {
	return ResponseRecorded{
		BaseEvent: BaseEvent{
			AggregateID: targetID,
			EventType:   TypeResponseRecorded,
			Timestamp:   timestamp,
		},
		TargetID:   targetID,
		VoterCount: voterCount,
		Questions:  questions,
	}
}

// ReportUnlocked is raised exactly once per target, on the locked to
// unlocked transition.
type ReportUnlocked struct {
	BaseEvent
	TargetID   string `json:"target_id"`
	VoterCount int    `json:"voter_count"`
}

// NewReportUnlocked creates a ReportUnlocked event
func NewReportUnlocked(targetID string, voterCount int, timestamp time.Time) ReportUnlocked {
	return ReportUnlocked{
		BaseEvent: BaseEvent{
			AggregateID: targetID,
			EventType:   TypeReportUnlocked,
			Timestamp:   timestamp,
		},
		TargetID:   targetID,
		VoterCount: voterCount,
	}
}
