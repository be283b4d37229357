package websocket

import (
	"log"
	"sync"

	"campus-connect/internal/utils"
)

const (
	// Size of each subscriber's buffered hand-off channel.
	subscriberBuffer = 256
)

// Subscriber is one live attachment to a recipient's delivery channel.
// The caller owns its lifetime: receive from C until it is closed, and
// call Close on disconnect.
type Subscriber struct {
	hub       *Hub
	recipient string
	ch        chan []byte

	closeOnce sync.Once
}

// C returns the stream of payloads published to the subscriber's recipient.
func (s *Subscriber) C() <-chan []byte {
	return s.ch
}

// Recipient returns the identity this subscriber is attached to.
func (s *Subscriber) Recipient() string {
	return s.recipient
}

// Close detaches the subscriber from the hub and closes its channel.
// Safe to call more than once.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		s.hub.unsubscribe(s)
		close(s.ch)
	})
}

// Hub is the per-recipient delivery bus. Payloads published to a
// recipient fan out to every currently attached subscriber of that
// recipient; there is no replay buffer, so subscribers attached after a
// publish never see it. Publishing never blocks: a subscriber whose
// buffer is full simply misses the payload and reconciles on its next
// poll.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscriber]bool
	metrics     *utils.MetricsCollector
}

// NewHub creates an empty hub. The metrics collector may be nil.
func NewHub(metrics *utils.MetricsCollector) *Hub {
	return &Hub{
		subscribers: make(map[string]map[*Subscriber]bool),
		metrics:     metrics,
	}
}

// Subscribe attaches a new subscriber to the recipient's channel.
// Multiple subscribers per recipient are allowed (multiple open tabs).
func (h *Hub) Subscribe(recipient string) *Subscriber {
	sub := &Subscriber{
		hub:       h,
		recipient: recipient,
		ch:        make(chan []byte, subscriberBuffer),
	}

	h.mu.Lock()
	if _, ok := h.subscribers[recipient]; !ok {
		h.subscribers[recipient] = make(map[*Subscriber]bool)
	}
	h.subscribers[recipient][sub] = true
	count := len(h.subscribers[recipient])
	h.mu.Unlock()

	log.Printf("Delivery subscriber attached for %s. Total connections: %d", recipient, count)
	return sub
}

func (h *Hub) unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subscribers[sub.recipient]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subscribers, sub.recipient)
			log.Printf("Delivery subscriber detached. %s has no more connections.", sub.recipient)
		}
	}
}

// Publish fans a payload out to every current subscriber of the
// recipient. Fire-and-forget: no error, no blocking. A publish to a
// recipient with no subscribers is dropped.
func (h *Hub) Publish(recipient string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[recipient]
	if !ok {
		return
	}
	for sub := range subs {
		select {
		case sub.ch <- payload:
		default:
			// Slow subscriber; drop rather than block the publisher.
			log.Printf("Delivery buffer full for a subscriber of %s. Payload dropped for this connection.", recipient)
			if h.metrics != nil {
				h.metrics.IncrementDroppedDeliveries()
			}
		}
	}
}

// SubscriberCount reports the live connection count for a recipient.
func (h *Hub) SubscriberCount(recipient string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[recipient])
}
