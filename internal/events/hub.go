package events

import (
	"log/slog"
	"sync"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber
// that falls this far behind is dropped rather than blocking publishers.
const subscriberBuffer = 64

// Publisher is the narrow interface services use to emit events. It is
// satisfied by the Hub; tests substitute a recording fake.
type Publisher interface {
	Publish(event Event)
}

// Subscription is one client's handle on the Hub. Events arrive on C in
// publish order; C is closed when the subscription is cancelled or the
// subscriber is dropped for falling behind.
type Subscription struct {
	C chan Event

	hub  *Hub
	once sync.Once
}

// Cancel removes the subscription from the Hub and closes C. It is safe
// to call more than once and safe to call after the Hub has already
// dropped the subscriber.
func (s *Subscription) Cancel() {
	s.hub.remove(s)
}

// Hub is the process-wide subscriber registry. Every published event goes
// to every live subscriber; there is no filtering and no replay.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	logger *slog.Logger
}

// NewHub creates an empty Hub. If logger is nil, a default logger is used.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: logger.With(slog.String("component", "event_hub")),
	}
}

// Subscribe registers a new subscriber and queues the INIT greeting as its
// first event.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		C:   make(chan Event, subscriberBuffer),
		hub: h,
	}
	sub.C <- NewInit()

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	count := len(h.subs)
	h.mu.Unlock()

	h.logger.Debug("subscriber registered", slog.Int("subscriber_count", count))
	return sub
}

// Publish delivers event to every live subscriber. The send is
// non-blocking; a subscriber whose buffer is full is dropped and its
// channel closed. Calls from a single goroutine reach each subscriber in
// call order.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub.C <- event:
		default:
			h.dropLocked(sub)
			h.logger.Warn("dropped slow subscriber",
				slog.String("event_type", event.Type),
				slog.Int("subscriber_count", len(h.subs)))
		}
	}
}

// Len reports the current number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(sub)
}

// dropLocked deregisters sub and closes its channel exactly once. Callers
// must hold h.mu. Removing an already-removed subscription is a no-op.
func (h *Hub) dropLocked(sub *Subscription) {
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	sub.once.Do(func() { close(sub.C) })
}

var _ Publisher = (*Hub)(nil)
