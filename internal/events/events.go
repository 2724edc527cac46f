// Package events is the explicit notification channel for cart changes.
// Anything that used to rely on an ambient "refresh the badge" callback
// subscribes here instead; mutations publish on success only.
package events

import (
	"context"
	"sync"
	"time"
)

// CartUpdated is published after a mutation is confirmed by the cart service.
type CartUpdated struct {
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"` // add, adjust or remove
	ProductID string    `json:"product_id,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, event CartUpdated) error
}

// Bus fans events out to in-process subscribers. Delivery is best-effort: a
// subscriber that stops draining its channel loses events rather than
// blocking the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan CartUpdated
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan CartUpdated)}
}

// Subscribe returns a receive channel and a cancel func that must be called
// when the subscriber goes away.
func (b *Bus) Subscribe() (<-chan CartUpdated, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan CartUpdated, 16)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

func (b *Bus) Publish(_ context.Context, event CartUpdated) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		select {
		case sub <- event:
		default:
		}
	}
	return nil
}

// Multi publishes to several publishers, returning the first error after
// attempting all of them.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event CartUpdated) error {
	var firstErr error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
