package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesTopicSubscriber(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("tickets")
	defer sub.Close()

	h.Publish("tickets", ActionInsert, map[string]string{"id": "t1"})

	ev := <-sub.C
	assert.Equal(t, "tickets", ev.Topic)
	assert.Equal(t, ActionInsert, ev.Action)
}

func TestPublishSkipsOtherTopics(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("announcements")
	defer sub.Close()

	h.Publish("tickets", ActionInsert, nil)

	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestWildcardSubscriberSeesEverything(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe()
	defer sub.Close()

	h.Publish("tickets", ActionInsert, nil)
	h.Publish("reminders", ActionUpdate, nil)

	first := <-sub.C
	second := <-sub.C
	assert.Equal(t, "tickets", first.Topic)
	assert.Equal(t, "reminders", second.Topic)
}

func TestCloseDetaches(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("tickets")
	sub.Close()
	sub.Close() // idempotent

	// Publishing after close must not panic or deliver.
	h.Publish("tickets", ActionDelete, nil)

	_, open := <-sub.C
	assert.False(t, open, "channel is closed after Close")
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("tickets")
	defer sub.Close()

	// Overfill the buffer; Publish must return every time.
	for i := 0; i < subscriptionBuffer*2; i++ {
		h.Publish("tickets", ActionInsert, i)
	}

	drained := 0
	for {
		select {
		case <-sub.C:
			drained++
			continue
		default:
		}
		break
	}
	require.Equal(t, subscriptionBuffer, drained, "overflow is dropped, not queued")
}
