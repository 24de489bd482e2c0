// Package event is the notification hub between taming state transitions
// and their side effects (persistence, logging, metrics).
//
// Publishing is synchronous on the caller's goroutine. A failing handler
// is logged and skipped; it never reaches the publisher and never stops
// delivery to the remaining handlers.
package event

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
)

// DefaultPriority is the priority most subscribers use.
const DefaultPriority = 0

// Handler reacts to one event. A returned error is logged by the bus.
type Handler func(Event) error

// Subscription identifies a registered handler. Pass it to Unsubscribe.
type Subscription struct {
	kind     Kind
	priority int
	seq      uint64
	handler  Handler
}

// Kind returns the event kind the subscription listens to.
func (s *Subscription) Kind() Kind {
	return s.kind
}

// Priority returns the subscription priority (lower runs first).
func (s *Subscription) Priority() int {
	return s.priority
}

// Bus is a priority-ordered publish/subscribe hub.
// Thread-safe: handler lists are copy-on-write, so Publish never holds
// the lock while handlers run and handlers may subscribe or publish.
type Bus struct {
	mu   sync.RWMutex
	subs map[Kind][]*Subscription // sorted by (priority, seq)
	seq  uint64

	failures atomic.Int64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[Kind][]*Subscription),
	}
}

// Subscribe registers h for events of exactly kind.
// Handlers run in ascending priority; equal priorities run in
// registration order.
func (b *Bus) Subscribe(kind Kind, priority int, h Handler) *Subscription {
	if h == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	sub := &Subscription{kind: kind, priority: priority, seq: b.seq, handler: h}

	cur := b.subs[kind]
	// First index with a strictly greater priority keeps ties in order.
	pos := sort.Search(len(cur), func(i int) bool { return cur[i].priority > priority })

	next := make([]*Subscription, 0, len(cur)+1)
	next = append(next, cur[:pos]...)
	next = append(next, sub)
	next = append(next, cur[pos:]...)
	b.subs[kind] = next

	return sub
}

// On subscribes a handler typed on the concrete event struct.
func On[E Event](b *Bus, priority int, fn func(E) error) *Subscription {
	var zero E
	return b.Subscribe(zero.Kind(), priority, func(e Event) error {
		typed, ok := e.(E)
		if !ok {
			return nil
		}
		return fn(typed)
	})
}

// Unsubscribe removes sub. Returns false if it was not registered.
func (b *Bus) Unsubscribe(sub *Subscription) bool {
	if sub == nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	cur := b.subs[sub.kind]
	for i, s := range cur {
		if s != sub {
			continue
		}
		if len(cur) == 1 {
			delete(b.subs, sub.kind)
			return true
		}
		next := make([]*Subscription, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		b.subs[sub.kind] = next
		return true
	}
	return false
}

// Publish delivers e to every handler registered for e.Kind().
func (b *Bus) Publish(e Event) {
	if e == nil {
		return
	}

	b.mu.RLock()
	subs := b.subs[e.Kind()]
	b.mu.RUnlock()

	for _, sub := range subs {
		b.dispatch(sub, e)
	}
}

func (b *Bus) dispatch(sub *Subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.failures.Add(1)
			slog.Error("event handler panicked",
				"kind", e.Kind(),
				"priority", sub.priority,
				"panic", r)
		}
	}()

	if err := sub.handler(e); err != nil {
		b.failures.Add(1)
		slog.Error("event handler failed",
			"kind", e.Kind(),
			"priority", sub.priority,
			"err", err)
	}
}

// SubscriberCount returns the number of handlers for kind.
func (b *Bus) SubscriberCount(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[kind])
}

// Failures returns how many handler invocations failed since creation.
func (b *Bus) Failures() int64 {
	return b.failures.Load()
}
