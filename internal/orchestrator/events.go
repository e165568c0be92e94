package orchestrator

import "sync"

// Bus is a minimal change-notification bus. It carries no payload: a
// notification means "persisted state changed, re-read what you need".
type Bus struct {
	mu   sync.Mutex
	next int
	subs []subscriber
}

type subscriber struct {
	id int
	fn func()
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a callback and returns its unsubscribe function.
// Multiple subscriptions are independent, even from the same owner.
func (b *Bus) Subscribe(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Notify invokes every currently registered callback synchronously, in
// subscription order. Callbacks run outside the bus lock so they may
// subscribe or unsubscribe without deadlocking.
func (b *Bus) Notify() {
	b.mu.Lock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()
	for _, s := range subs {
		s.fn()
	}
}
