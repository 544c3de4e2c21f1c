package accounts

import (
	"context"
	"sync"
	"time"
)

type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventProfileUpdated EventType = "profile_updated"
	EventMemberCreated  EventType = "member_created"
)

type Event struct {
	Type    EventType
	UserID  string
	Profile *Profile
	At      time.Time
}

// Hub fans session events out to subscribers. Slow subscribers miss events
// rather than block the publisher.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

func NewHub() *Hub { return &Hub{subs: map[int]chan Event{}} }

// Subscribe delivers events until ctx ends, then closes the channel.
func (h *Hub) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(ch)
		h.mu.Unlock()
	}()
	return ch
}

func (h *Hub) Publish(e Event) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
