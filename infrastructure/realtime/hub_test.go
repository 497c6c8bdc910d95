package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeonghun43/Prism/application/ports"
)

func feedMsg(targetID, msgType string) ports.FeedMessage {
	return ports.FeedMessage{
		Type:      msgType,
		TargetID:  targetID,
		Payload:   map[string]interface{}{"voter_count": 3},
		Timestamp: time.Now(),
	}
}

func TestHub_BroadcastReachesSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())

	ch1, cancel1 := hub.Subscribe("target-1")
	defer cancel1()
	ch2, cancel2 := hub.Subscribe("target-1")
	defer cancel2()
	other, cancelOther := hub.Subscribe("target-2")
	defer cancelOther()

	require.NoError(t, hub.Broadcast(context.Background(), feedMsg("target-1", ports.FeedResponseRecorded)))

	for _, ch := range []<-chan ports.FeedMessage{ch1, ch2} {
		select {
		case msg := <-ch:
			assert.Equal(t, ports.FeedResponseRecorded, msg.Type)
			assert.Equal(t, "target-1", msg.TargetID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the message")
		}
	}

	select {
	case msg := <-other:
		t.Fatalf("target-2 subscriber received foreign message %v", msg)
	default:
	}
}

func TestHub_CancelClosesChannelAndUnsubscribes(t *testing.T) {
	hub := NewHub(zap.NewNop())

	ch, cancel := hub.Subscribe("target-1")
	require.Equal(t, 1, hub.SubscriberCount("target-1"))

	cancel()
	assert.Equal(t, 0, hub.SubscriberCount("target-1"))

	_, open := <-ch
	assert.False(t, open, "cancel closes the channel")

	// Broadcasting after cancel must not panic on the closed channel.
	assert.NoError(t, hub.Broadcast(context.Background(), feedMsg("target-1", ports.FeedReportUnlocked)))
}

func TestHub_CancelIsIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())

	_, cancel := hub.Subscribe("target-1")
	cancel()
	assert.NotPanics(t, cancel)
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(zap.NewNop())

	ch, cancel := hub.Subscribe("target-1")
	defer cancel()

	// Overfill the buffer; the extra sends must return immediately.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer+5; i++ {
			hub.Broadcast(context.Background(), feedMsg("target-1", ports.FeedNotificationCreated))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow subscriber")
	}

	assert.Len(t, ch, subscriberBuffer, "buffer holds its depth, the rest is dropped")
}
