package realtime

import (
	"context"

	"github.com/jeonghun43/Prism/application/ports"
)

// MultiBroadcaster fans one message out to several broadcasters, e.g. the
// in-process hub for SSE clients plus the API Gateway path for WebSocket
// clients. The first error is returned after every broadcaster has been
// attempted.
type MultiBroadcaster struct {
	broadcasters []ports.Broadcaster
}

// NewMultiBroadcaster composes the given broadcasters.
func NewMultiBroadcaster(broadcasters ...ports.Broadcaster) *MultiBroadcaster {
	return &MultiBroadcaster{broadcasters: broadcasters}
}

// Broadcast delivers the message through every composed broadcaster
func (m *MultiBroadcaster) Broadcast(ctx context.Context, msg ports.FeedMessage) error {
	var firstErr error
	for _, b := range m.broadcasters {
		if err := b.Broadcast(ctx, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
