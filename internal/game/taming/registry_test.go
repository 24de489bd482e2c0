package taming

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/taming/internal/model"
)

func newTestAnimal(owner uuid.UUID, createdAt int64) model.TamedAnimal {
	return model.NewTamedAnimal(uuid.New(), owner, "Owner", "wolf", model.NewLocation(0, 64, 0), 24, createdAt)
}

func TestRegistry_RegisterLookups(t *testing.T) {
	r := NewRegistry()
	owner := uuid.New()
	a := newTestAnimal(owner, 1)

	r.Register(a, 0x20000001)

	got, ok := r.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, a, got)

	got, ok = r.GetByHandle(0x20000001)
	require.True(t, ok)
	assert.Equal(t, a, got)

	assert.Contains(t, r.GetByOwner(owner), a)
	assert.True(t, r.HasHandle(0x20000001))
	assert.Equal(t, uint32(0x20000001), r.HandleOf(a.ID))
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	owner := uuid.New()
	a := newTestAnimal(owner, 1)
	r.Register(a, 0x20000001)

	removed, ok := r.Unregister(a.ID)
	require.True(t, ok)
	assert.Equal(t, a.ID, removed.ID)

	_, ok = r.Get(a.ID)
	assert.False(t, ok)
	_, ok = r.GetByHandle(0x20000001)
	assert.False(t, ok)
	assert.False(t, r.HasHandle(0x20000001))
	assert.Empty(t, r.GetByOwner(owner))
	assert.Equal(t, NoHandle, r.HandleOf(a.ID))
	assert.Equal(t, 0, r.Count())

	_, ok = r.Unregister(a.ID)
	assert.False(t, ok, "second unregister")
}

func TestRegistry_UnregisterLeavesOtherHandles(t *testing.T) {
	r := NewRegistry()
	owner := uuid.New()
	a := newTestAnimal(owner, 1)
	b := newTestAnimal(owner, 2)
	r.Register(a, 1)
	r.Register(b, 2)

	r.Unregister(a.ID)

	got, ok := r.GetByHandle(2)
	require.True(t, ok)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, []model.TamedAnimal{b}, r.GetByOwner(owner))
}

func TestRegistry_RegisterWithoutHandle(t *testing.T) {
	r := NewRegistry()
	a := newTestAnimal(uuid.New(), 1)

	r.Register(a, NoHandle)

	assert.False(t, r.HasHandle(NoHandle))
	_, ok := r.GetByHandle(NoHandle)
	assert.False(t, ok)
	_, ok = r.Get(a.ID)
	assert.True(t, ok)
}

func TestRegistry_ReRegisterOverwrites(t *testing.T) {
	r := NewRegistry()
	oldOwner, newOwner := uuid.New(), uuid.New()
	a := newTestAnimal(oldOwner, 1)
	r.Register(a, 10)

	moved := a.WithOwner(newOwner, "New")
	r.Register(moved, 11)

	assert.Equal(t, 1, r.Count())
	assert.Empty(t, r.GetByOwner(oldOwner))
	assert.Len(t, r.GetByOwner(newOwner), 1)
	assert.False(t, r.HasHandle(10), "stale handle")
	assert.True(t, r.HasHandle(11))
}

func TestRegistry_Update(t *testing.T) {
	r := NewRegistry()
	owner := uuid.New()
	a := newTestAnimal(owner, 1)
	r.Register(a, 7)

	r.Update(a.WithMode(model.ModeStay))

	got, _ := r.Get(a.ID)
	assert.Equal(t, model.ModeStay, got.Mode)
	got, _ = r.GetByHandle(7)
	assert.Equal(t, model.ModeStay, got.Mode, "handle index sees the update")
}

func TestRegistry_UpdateMovesOwner(t *testing.T) {
	r := NewRegistry()
	oldOwner, newOwner := uuid.New(), uuid.New()
	a := newTestAnimal(oldOwner, 1)
	r.Register(a, 7)

	r.Update(a.WithOwner(newOwner, "New"))

	assert.Empty(t, r.GetByOwner(oldOwner))
	owned := r.GetByOwner(newOwner)
	require.Len(t, owned, 1)
	assert.Equal(t, "New", owned[0].OwnerName)
	assert.True(t, r.HasHandle(7))
}

func TestRegistry_UpdateUnregisteredPanics(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() {
		r.Update(newTestAnimal(uuid.New(), 1))
	})
}

func TestRegistry_UpdateHandle(t *testing.T) {
	r := NewRegistry()
	a := newTestAnimal(uuid.New(), 1)
	r.Register(a, 100)

	require.True(t, r.UpdateHandle(a.ID, 200))

	assert.False(t, r.HasHandle(100), "old handle must be dropped")
	got, ok := r.GetByHandle(200)
	require.True(t, ok)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, uint32(200), r.HandleOf(a.ID))

	assert.False(t, r.UpdateHandle(uuid.New(), 300), "unknown id")
	assert.False(t, r.HasHandle(300))
}

func TestRegistry_HandleReusedByAnotherAnimal(t *testing.T) {
	r := NewRegistry()
	a := newTestAnimal(uuid.New(), 1)
	b := newTestAnimal(uuid.New(), 2)
	r.Register(a, 100)

	// The host recycled handle 100 for b's new entity.
	r.Register(b, 100)

	got, ok := r.GetByHandle(100)
	require.True(t, ok)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, NoHandle, r.HandleOf(a.ID))

	// Removing a must not touch b's handle.
	r.Unregister(a.ID)
	assert.True(t, r.HasHandle(100))
}

func TestRegistry_GetByOwnerIsCopy(t *testing.T) {
	r := NewRegistry()
	owner := uuid.New()
	first := newTestAnimal(owner, 2)
	second := newTestAnimal(owner, 1)
	r.Register(first, 1)
	r.Register(second, 2)

	owned := r.GetByOwner(owner)
	require.Len(t, owned, 2)
	assert.Equal(t, second.ID, owned[0].ID, "oldest first")

	owned[0].CustomName = "mutated"
	got, _ := r.Get(second.ID)
	assert.Empty(t, got.CustomName)
}

func TestRegistry_AllAndClear(t *testing.T) {
	r := NewRegistry()
	for i := range 5 {
		r.Register(newTestAnimal(uuid.New(), int64(i)), uint32(i+1))
	}
	assert.Len(t, r.All(), 5)

	r.Clear()
	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.All())
	assert.False(t, r.HasHandle(1))
}

func TestRegistry_ConcurrentMutations(t *testing.T) {
	r := NewRegistry()
	owner := uuid.New()

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				a := newTestAnimal(owner, int64(i))
				handle := uint32(w*perWorker + i + 1)
				r.Register(a, handle)
				_, _ = r.GetByHandle(handle)
				_ = r.GetByOwner(owner)
				r.UpdateHandle(a.ID, handle+100_000)
				if i%2 == 0 {
					r.Unregister(a.ID)
				}
			}
		}()
	}
	wg.Wait()

	want := workers * perWorker / 2
	assert.Equal(t, want, r.Count())
	assert.Len(t, r.GetByOwner(owner), want)
	for _, a := range r.All() {
		h := r.HandleOf(a.ID)
		got, ok := r.GetByHandle(h)
		require.True(t, ok)
		assert.Equal(t, a.ID, got.ID)
	}
}
