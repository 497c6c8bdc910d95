// Package realtime implements the subscription feed: an in-process hub
// backing the SSE endpoint and an API Gateway broadcaster for WebSocket
// deployments.
package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls this far behind starts losing messages rather than blocking writers;
// feed payloads carry absolute state, so a dropped message only delays the
// subscriber until the next one.
const subscriberBuffer = 16

// Hub is an in-process ports.Broadcaster that fans feed messages out to
// channel subscribers, keyed by target.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan ports.FeedMessage]struct{}
	logger      *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan ports.FeedMessage]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener for one target's feed. The returned cancel
// function removes the subscription and closes the channel; it is safe to
// call more than once.
func (h *Hub) Subscribe(targetID string) (<-chan ports.FeedMessage, func()) {
	ch := make(chan ports.FeedMessage, subscriberBuffer)

	h.mu.Lock()
	if h.subscribers[targetID] == nil {
		h.subscribers[targetID] = make(map[chan ports.FeedMessage]struct{})
	}
	h.subscribers[targetID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if subs, ok := h.subscribers[targetID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subscribers, targetID)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Broadcast delivers the message to every subscriber of its target. Slow
// subscribers are skipped, never waited on.
func (h *Hub) Broadcast(_ context.Context, msg ports.FeedMessage) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[msg.TargetID] {
		select {
		case ch <- msg:
		default:
			h.logger.Warn("dropping feed message for slow subscriber",
				zap.String("targetID", msg.TargetID),
				zap.String("type", msg.Type),
			)
		}
	}
	return nil
}

// SubscriberCount reports the number of active subscribers for a target.
func (h *Hub) SubscriberCount(targetID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[targetID])
}
