package broker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Count is serviced by the same loop as broadcasts, so calling it after
// Broadcast guarantees the broadcast pass has finished.
func await(h *Hub) { h.Count() }

func TestBroadcastReachesEveryLiveSubscriber(t *testing.T) {
	h := NewHub()
	subs := []*Subscriber{h.Subscribe(), h.Subscribe(), h.Subscribe()}
	require.Equal(t, 3, h.Count())

	h.Broadcast([]byte("event"))
	await(h)

	for i, s := range subs {
		assert.Len(t, s.ch, 1, "subscriber %d should have exactly one delivery", i)
		assert.Equal(t, []byte("event"), <-s.Events())
	}
}

func TestBroadcastWithoutSubscribers(t *testing.T) {
	h := NewHub()
	h.Broadcast([]byte("nobody home"))
	await(h)
	assert.Equal(t, 0, h.Count())
}

func TestUnsubscribedDoesNotReceive(t *testing.T) {
	h := NewHub()
	gone := h.Subscribe()
	stays := h.Subscribe()

	gone.Close()
	h.Broadcast([]byte("after close"))
	await(h)

	assert.Equal(t, []byte("after close"), <-stays.Events())

	// The closed subscriber's channel is closed and empty.
	payload, open := <-gone.Events()
	assert.Nil(t, payload)
	assert.False(t, open)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	h := NewHub()
	s := h.Subscribe()
	s.Close()
	s.Close()
	h.Unsubscribe(s)
	assert.Equal(t, 0, h.Count())
}

func TestSlowSubscriberIsDroppedOthersDelivered(t *testing.T) {
	h := NewHub()
	stuck := h.Subscribe()
	healthy := h.Subscribe()

	// Fill the stuck subscriber's queue so the next delivery cannot be
	// buffered.
	for i := 0; i < sendBuffer; i++ {
		stuck.ch <- []byte("backlog")
	}

	h.Broadcast([]byte("overflow"))
	await(h)

	assert.Equal(t, 1, h.Count())
	assert.Equal(t, []byte("overflow"), <-healthy.Events())

	// The stuck subscriber's channel was closed; draining it ends in a
	// closed-channel read without the overflow payload.
	got := 0
	for range stuck.Events() {
		got++
	}
	assert.Equal(t, sendBuffer, got)
}

func TestSubscribersObservePublishOrder(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	const n = 50
	for i := 0; i < n; i++ {
		h.Broadcast([]byte(fmt.Sprintf("event-%d", i)))
	}
	await(h)

	for _, s := range []*Subscriber{a, b} {
		for i := 0; i < n; i++ {
			select {
			case payload := <-s.Events():
				assert.Equal(t, fmt.Sprintf("event-%d", i), string(payload))
			case <-time.After(time.Second):
				t.Fatalf("timed out waiting for event %d", i)
			}
		}
	}
}

func TestSubscribeDuringBroadcastsDoesNotReceiveHistory(t *testing.T) {
	h := NewHub()
	h.Broadcast([]byte("before"))
	await(h)

	late := h.Subscribe()
	h.Broadcast([]byte("after"))
	await(h)

	assert.Len(t, late.ch, 1)
	assert.Equal(t, []byte("after"), <-late.Events())
}
