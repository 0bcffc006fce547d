package broadcast

import (
	"log/slog"
	"sync"

	"github.com/smslease/smslease/internal/domain/model"
)

// Subscription is one live client connection registered under a user id.
type Subscription struct {
	userID int64
	ch     chan model.Event
}

// UserID returns the owning user.
func (s *Subscription) UserID() int64 { return s.userID }

// Events is the receive side of the subscription. The channel is closed when
// the subscription is removed or the broadcaster shuts down.
func (s *Subscription) Events() <-chan model.Event { return s.ch }

// Broadcaster fans order/message events out to every live connection of the
// owning user. Delivery is best-effort: events for users with no connection
// are dropped, and a slow connection loses its oldest buffered event rather
// than blocking publishers. Not an audit trail.
type Broadcaster struct {
	buffer int
	logger *slog.Logger

	mu     sync.RWMutex
	subs   map[int64]map[*Subscription]struct{}
	closed bool
}

// New constructs a broadcaster with the given per-connection buffer size.
func New(buffer int, logger *slog.Logger) *Broadcaster {
	if buffer <= 0 {
		buffer = 16
	}
	return &Broadcaster{
		buffer: buffer,
		logger: logger,
		subs:   make(map[int64]map[*Subscription]struct{}),
	}
}

// Subscribe registers a live connection for the user. Multiple simultaneous
// subscriptions per user are supported; each receives every event.
func (b *Broadcaster) Subscribe(userID int64) *Subscription {
	sub := &Subscription{userID: userID, ch: make(chan model.Event, b.buffer)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return sub
	}
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[*Subscription]struct{})
	}
	b.subs[userID][sub] = struct{}{}
	return sub
}

// Unsubscribe removes the connection. Never blocks publishers.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	set, ok := b.subs[sub.userID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, sub.userID)
	}
	close(sub.ch)
}

// Publish delivers the event to every subscription of its user, dropping the
// oldest buffered event on overflow. Silently ignored when nobody listens.
func (b *Broadcaster) Publish(event model.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for sub := range b.subs[event.UserID] {
		b.deliver(sub, event)
	}
}

func (b *Broadcaster) deliver(sub *Subscription, event model.Event) {
	select {
	case sub.ch <- event:
		return
	default:
	}

	// Buffer full: drop the oldest event, then retry once.
	select {
	case <-sub.ch:
	default:
	}
	select {
	case sub.ch <- event:
	default:
		b.logger.Warn("event dropped",
			slog.Int64("user", sub.userID),
			slog.String("type", string(event.Type)),
		)
	}
}

// Connections reports the number of live subscriptions for a user.
func (b *Broadcaster) Connections(userID int64) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}

// Close terminates every subscription; subsequent publishes are no-ops.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, set := range b.subs {
		for sub := range set {
			close(sub.ch)
		}
	}
	b.subs = nil
}
