// Package broker fans marker-change events out to every live subscriber.
// The subscriber set is owned by a single run loop goroutine; subscribe,
// unsubscribe, broadcast and count are all messages to that loop, so every
// broadcast sees a consistent snapshot and all subscribers observe events in
// the same order they were published.
package broker

// sendBuffer is the per-subscriber queue depth. A subscriber that falls this
// far behind is dropped rather than allowed to stall the broadcast pass.
const sendBuffer = 256

// Subscriber is a live observer of marker change events. Its channel is
// closed when the subscriber is removed, either explicitly or because it
// could not keep up.
type Subscriber struct {
	hub *Hub
	ch  chan []byte
}

// Events returns the stream of serialized events for this subscriber. The
// channel is closed on removal.
func (s *Subscriber) Events() <-chan []byte { return s.ch }

// Close removes the subscriber from its hub. Safe to call more than once and
// safe to call after the hub already dropped the subscriber.
func (s *Subscriber) Close() { s.hub.Unsubscribe(s) }

// Hub manages the subscriber set and broadcasts.
type Hub struct {
	register   chan *Subscriber
	unregister chan *Subscriber
	broadcast  chan []byte
	count      chan chan int
	// Owned by run(); never touched from other goroutines.
	subscribers map[*Subscriber]bool
}

// NewHub creates and starts a new Hub loop.
func NewHub() *Hub {
	h := &Hub{
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		broadcast:   make(chan []byte),
		count:       make(chan chan int),
		subscribers: make(map[*Subscriber]bool),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case s := <-h.register:
			h.subscribers[s] = true
		case s := <-h.unregister:
			if h.subscribers[s] {
				delete(h.subscribers, s)
				close(s.ch)
			}
		case payload := <-h.broadcast:
			for s := range h.subscribers {
				select {
				case s.ch <- payload:
				default:
					// Backpressure: drop subscribers that can't keep up.
					delete(h.subscribers, s)
					close(s.ch)
				}
			}
		case resp := <-h.count:
			resp <- len(h.subscribers)
		}
	}
}

// Subscribe registers a new subscriber and returns its handle. Events
// broadcast before registration completes are not delivered to it.
func (h *Hub) Subscribe() *Subscriber {
	s := &Subscriber{hub: h, ch: make(chan []byte, sendBuffer)}
	h.register <- s
	return s
}

// Unsubscribe removes a subscriber. Idempotent.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.unregister <- s
}

// Broadcast delivers payload to every subscriber registered at this moment.
// Delivery into each subscriber's queue is non-blocking; the caller never
// waits for a sink to flush. With no subscribers the payload is discarded.
func (h *Hub) Broadcast(payload []byte) {
	h.broadcast <- payload
}

// Count reports the current number of live subscribers.
func (h *Hub) Count() int {
	resp := make(chan int)
	h.count <- resp
	return <-resp
}
