package event

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PriorityOrder(t *testing.T) {
	bus := NewBus()
	var order []int

	for _, p := range []int{5, 1, 3} {
		bus.Subscribe(KindTamingStarted, p, func(Event) error {
			order = append(order, p)
			return nil
		})
	}

	bus.Publish(TamingStarted{Tick: 1})

	assert.Equal(t, []int{1, 3, 5}, order)
}

func TestBus_TiesKeepRegistrationOrder(t *testing.T) {
	bus := NewBus()
	var order []string

	bus.Subscribe(KindTrustChanged, 0, func(Event) error { order = append(order, "a"); return nil })
	bus.Subscribe(KindTrustChanged, -1, func(Event) error { order = append(order, "first"); return nil })
	bus.Subscribe(KindTrustChanged, 0, func(Event) error { order = append(order, "b"); return nil })
	bus.Subscribe(KindTrustChanged, 0, func(Event) error { order = append(order, "c"); return nil })

	bus.Publish(TrustChanged{})

	assert.Equal(t, []string{"first", "a", "b", "c"}, order)
}

func TestBus_FailingHandlerIsolated(t *testing.T) {
	tests := []struct {
		name    string
		handler Handler
	}{
		{"error", func(Event) error { return errors.New("store down") }},
		{"panic", func(Event) error { panic("boom") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := NewBus()
			var ran []int

			bus.Subscribe(KindCreatureLost, 5, func(Event) error { ran = append(ran, 5); return nil })
			bus.Subscribe(KindCreatureLost, 1, tt.handler)
			bus.Subscribe(KindCreatureLost, 3, func(Event) error { ran = append(ran, 3); return nil })

			require.NotPanics(t, func() {
				bus.Publish(CreatureLost{Reason: LostReleased})
			})

			assert.Equal(t, []int{3, 5}, ran)
			assert.Equal(t, int64(1), bus.Failures())
		})
	}
}

func TestBus_ExactKindOnly(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Subscribe(KindTamingCompleted, 0, func(Event) error { calls++; return nil })

	bus.Publish(TamingStarted{})
	bus.Publish(CreatureCalmed{})
	assert.Equal(t, 0, calls)

	bus.Publish(TamingCompleted{})
	assert.Equal(t, 1, calls)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	var got []string

	a := bus.Subscribe(KindCreaturePetted, 0, func(Event) error { got = append(got, "a"); return nil })
	bus.Subscribe(KindCreaturePetted, 0, func(Event) error { got = append(got, "b"); return nil })

	assert.True(t, bus.Unsubscribe(a))
	assert.False(t, bus.Unsubscribe(a), "second unsubscribe")
	assert.False(t, bus.Unsubscribe(nil))
	assert.Equal(t, 1, bus.SubscriberCount(KindCreaturePetted))

	bus.Publish(CreaturePetted{})
	assert.Equal(t, []string{"b"}, got)
}

func TestBus_NilHandler(t *testing.T) {
	bus := NewBus()
	assert.Nil(t, bus.Subscribe(KindCalmExpired, 0, nil))
	assert.Equal(t, 0, bus.SubscriberCount(KindCalmExpired))
}

func TestOn_Typed(t *testing.T) {
	bus := NewBus()
	id := uuid.New()
	var got TamingCancelled

	sub := On(bus, DefaultPriority, func(e TamingCancelled) error {
		got = e
		return nil
	})
	require.NotNil(t, sub)
	assert.Equal(t, KindTamingCancelled, sub.Kind())
	assert.Equal(t, DefaultPriority, sub.Priority())

	bus.Publish(TamingCancelled{ID: id, Reason: "fled"})

	assert.Equal(t, id, got.ID)
	assert.Equal(t, "fled", got.Reason)
}

func TestBus_ReentrantSubscribeDuringPublish(t *testing.T) {
	bus := NewBus()
	calls := 0

	bus.Subscribe(KindCreatureCalmed, 0, func(Event) error {
		calls++
		bus.Subscribe(KindCreatureCalmed, 1, func(Event) error { calls++; return nil })
		return nil
	})

	bus.Publish(CreatureCalmed{})
	assert.Equal(t, 1, calls, "handler added during publish must not run in the same publish")
	assert.Equal(t, 2, bus.SubscriberCount(KindCreatureCalmed))
}

func TestBus_ConcurrentPublishSubscribe(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	total := 0

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			bus.Subscribe(KindTrustChanged, 0, func(Event) error {
				mu.Lock()
				total++
				mu.Unlock()
				return nil
			})
		}()
		go func() {
			defer wg.Done()
			bus.Publish(TrustChanged{})
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, bus.SubscriberCount(KindTrustChanged))
	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, total, 100)
}
