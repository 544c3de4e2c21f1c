package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHub_FanOutAndClose(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	a := h.Subscribe(ctx)
	b := h.Subscribe(context.Background())

	h.Publish(Event{Type: EventSignedIn, UserID: "u1"})
	require.Equal(t, "u1", (<-a).UserID)
	require.Equal(t, "u1", (<-b).UserID)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, open := <-a:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	h.Publish(Event{Type: EventSignedOut, UserID: "u1"})
	require.Equal(t, EventSignedOut, (<-b).Type)
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	_ = h.Subscribe(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish(Event{Type: EventProfileUpdated})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	var nilHub *Hub
	nilHub.Publish(Event{})
}
