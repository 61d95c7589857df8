package event

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Publisher is what the stores depend on.
type Publisher interface {
	Publish(e Event)
}

// Bus fans events out to subscribers. Every subscriber owns a buffered
// channel; Publish never blocks and drops events for subscribers whose
// buffer is full.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscription
	buffer      int
	dropped     atomic.Uint64
	logger      *slog.Logger
}

// NewBus creates a bus whose subscriptions default to the given buffer size.
func NewBus(defaultBuffer int, logger *slog.Logger) *Bus {
	if defaultBuffer < 1 {
		defaultBuffer = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subscribers: make(map[string]*Subscription),
		buffer:      defaultBuffer,
		logger:      logger,
	}
}

// Subscription is a handle returned by Subscribe. Read events from C and call
// Close on teardown.
type Subscription struct {
	ID string
	C  <-chan Event

	ch   chan Event
	bus  *Bus
	once sync.Once
}

// Subscribe registers a new subscriber. A buffer below 1 uses the bus default.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = b.buffer
	}
	ch := make(chan Event, buffer)
	sub := &Subscription{
		ID:  uuid.NewString(),
		C:   ch,
		ch:  ch,
		bus: b,
	}

	b.mu.Lock()
	b.subscribers[sub.ID] = sub
	b.mu.Unlock()

	b.logger.Debug("event subscriber added", "subscription_id", sub.ID, "buffer", buffer)
	return sub
}

// Close unsubscribes and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subscribers, s.ID)
		close(s.ch)
		s.bus.mu.Unlock()

		s.bus.logger.Debug("event subscriber removed", "subscription_id", s.ID)
	})
}

// Publish delivers e to every current subscriber without blocking.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, sub := range b.subscribers {
		select {
		case sub.ch <- e:
		default:
			b.dropped.Add(1)
			b.logger.Warn("event dropped for slow subscriber",
				"subscription_id", id,
				"event_type", e.Type(),
				"entity_id", e.EntityID,
			)
		}
	}
}

// SubscriberCount reports how many subscriptions are open.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped reports how many deliveries were skipped because a buffer was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// CloseSubscriptions ends every open subscription, e.g. so long-lived
// streams return during server shutdown.
func (b *Bus) CloseSubscriptions() {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.Close()
	}
}
