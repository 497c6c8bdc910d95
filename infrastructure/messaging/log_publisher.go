// Package messaging holds event publisher implementations that need no
// external broker.
package messaging

import (
	"context"

	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
	"github.com/jeonghun43/Prism/domain/events"
)

// LogPublisher implements ports.EventPublisher by logging events. Used in
// local development where no EventBridge bus exists.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a log-only event publisher.
func NewLogPublisher(logger *zap.Logger) ports.EventPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs a single event
func (p *LogPublisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.logger.Info("domain event",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
		zap.Time("timestamp", event.GetTimestamp()),
	)
	return nil
}

// PublishBatch logs multiple events
func (p *LogPublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for _, event := range domainEvents {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
