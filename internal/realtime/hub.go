// Package realtime is the in-process change-notification hub. Mutating
// handlers publish events keyed by topic (the table name); views hold a
// subscription for their lifetime and tear it down on unmount.
package realtime

import (
	"sync"
	"time"
)

type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Event struct {
	Topic   string    `json:"topic"`
	Action  Action    `json:"action"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Subscription is a cancellable handle on a set of topics. Close is
// idempotent; after it returns no further events are delivered.
type Subscription struct {
	C chan Event

	hub    *Hub
	topics []string
	once   sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.detach(s)
		close(s.C)
	})
}

const subscriptionBuffer = 16

type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: map[string]map[*Subscription]struct{}{}}
}

// Subscribe attaches to the given topics. No topics means all topics.
func (h *Hub) Subscribe(topics ...string) *Subscription {
	if len(topics) == 0 {
		topics = []string{""}
	}
	sub := &Subscription{C: make(chan Event, subscriptionBuffer), hub: h, topics: topics}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, tp := range topics {
		set := h.topics[tp]
		if set == nil {
			set = map[*Subscription]struct{}{}
			h.topics[tp] = set
		}
		set[sub] = struct{}{}
	}
	return sub
}

func (h *Hub) detach(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, tp := range sub.topics {
		if set := h.topics[tp]; set != nil {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.topics, tp)
			}
		}
	}
}

// Publish fans the event out to topic subscribers and wildcard subscribers.
// A subscriber whose buffer is full loses the event; the next fetch resyncs
// it, so publishers never block.
func (h *Hub) Publish(topic string, action Action, payload any) {
	ev := Event{Topic: topic, Action: action, Payload: payload, At: time.Now()}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, tp := range []string{topic, ""} {
		for sub := range h.topics[tp] {
			select {
			case sub.C <- ev:
			default:
			}
		}
	}
}
