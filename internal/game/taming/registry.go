package taming

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/taming/internal/model"
)

// NoHandle marks a tamed animal that has no live entity in the world.
const NoHandle uint32 = 0

// Registry stores tamed animals indexed by identity, by owner and by the
// transient handle of the live entity.
// Thread-safe: one RWMutex guards all indexes, so every mutation is
// atomic across them.
type Registry struct {
	mu sync.RWMutex

	// animals: id → animal
	animals map[uuid.UUID]model.TamedAnimal

	// byOwner: ownerID → set of animal ids
	byOwner map[uuid.UUID]map[uuid.UUID]struct{}

	// byHandle: handle → animal id
	byHandle map[uint32]uuid.UUID

	// handleOf: animal id → handle (reverse of byHandle)
	handleOf map[uuid.UUID]uint32
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		animals:  make(map[uuid.UUID]model.TamedAnimal),
		byOwner:  make(map[uuid.UUID]map[uuid.UUID]struct{}),
		byHandle: make(map[uint32]uuid.UUID),
		handleOf: make(map[uuid.UUID]uint32),
	}
}

// Register inserts animal under handle. An existing entry with the same
// id is overwritten. Pass NoHandle when the entity is not spawned.
func (r *Registry) Register(animal model.TamedAnimal, handle uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.animals[animal.ID]; ok {
		r.removeOwnerLocked(old.OwnerID, old.ID)
	}
	r.animals[animal.ID] = animal
	r.addOwnerLocked(animal.OwnerID, animal.ID)
	r.setHandleLocked(animal.ID, handle)
}

// Update replaces a registered animal. Panics if the id was never
// registered: callers only update animals they looked up first.
func (r *Registry) Update(animal model.TamedAnimal) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.animals[animal.ID]
	if !ok {
		panic(fmt.Sprintf("taming: update of unregistered tamed animal %s", animal.ID))
	}
	if old.OwnerID != animal.OwnerID {
		r.removeOwnerLocked(old.OwnerID, animal.ID)
		r.addOwnerLocked(animal.OwnerID, animal.ID)
	}
	r.animals[animal.ID] = animal
}

// Unregister removes id from every index and returns the removed animal.
func (r *Registry) Unregister(id uuid.UUID) (model.TamedAnimal, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	animal, ok := r.animals[id]
	if !ok {
		return model.TamedAnimal{}, false
	}
	delete(r.animals, id)
	r.removeOwnerLocked(animal.OwnerID, id)
	r.clearHandleLocked(id)
	return animal, true
}

// UpdateHandle re-associates id with a new live entity handle
// (the entity respawned). Returns false if id is not registered.
func (r *Registry) UpdateHandle(id uuid.UUID, handle uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.animals[id]; !ok {
		return false
	}
	r.setHandleLocked(id, handle)
	return true
}

// Get returns the animal with the given identity.
func (r *Registry) Get(id uuid.UUID) (model.TamedAnimal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.animals[id]
	return a, ok
}

// GetByHandle returns the animal whose live entity has handle.
func (r *Registry) GetByHandle(handle uint32) (model.TamedAnimal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHandle[handle]
	if !ok {
		return model.TamedAnimal{}, false
	}
	a, ok := r.animals[id]
	return a, ok
}

// HasHandle reports whether handle belongs to a tamed animal.
func (r *Registry) HasHandle(handle uint32) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byHandle[handle]
	if !ok {
		return false
	}
	_, ok = r.animals[id]
	return ok
}

// HandleOf returns the current handle of id, or NoHandle.
func (r *Registry) HandleOf(id uuid.UUID) uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handleOf[id]
}

// GetByOwner returns a copy of the owner's animals, oldest first.
func (r *Registry) GetByOwner(ownerID uuid.UUID) []model.TamedAnimal {
	r.mu.RLock()
	ids := r.byOwner[ownerID]
	result := make([]model.TamedAnimal, 0, len(ids))
	for id := range ids {
		if a, ok := r.animals[id]; ok {
			result = append(result, a)
		}
	}
	r.mu.RUnlock()

	sortByCreation(result)
	return result
}

// All returns a copy of every registered animal, oldest first.
func (r *Registry) All() []model.TamedAnimal {
	r.mu.RLock()
	result := make([]model.TamedAnimal, 0, len(r.animals))
	for _, a := range r.animals {
		result = append(result, a)
	}
	r.mu.RUnlock()

	sortByCreation(result)
	return result
}

// Count returns the number of registered animals.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.animals)
}

// Clear removes everything.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.animals = make(map[uuid.UUID]model.TamedAnimal)
	r.byOwner = make(map[uuid.UUID]map[uuid.UUID]struct{})
	r.byHandle = make(map[uint32]uuid.UUID)
	r.handleOf = make(map[uuid.UUID]uint32)
}

func (r *Registry) addOwnerLocked(ownerID, id uuid.UUID) {
	set, ok := r.byOwner[ownerID]
	if !ok {
		set = make(map[uuid.UUID]struct{}, 4)
		r.byOwner[ownerID] = set
	}
	set[id] = struct{}{}
}

func (r *Registry) removeOwnerLocked(ownerID, id uuid.UUID) {
	set, ok := r.byOwner[ownerID]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(r.byOwner, ownerID)
	}
}

// setHandleLocked drops the stale handle of id and any other animal's
// claim on handle, then links them.
func (r *Registry) setHandleLocked(id uuid.UUID, handle uint32) {
	r.clearHandleLocked(id)
	if handle == NoHandle {
		return
	}
	if prev, ok := r.byHandle[handle]; ok {
		delete(r.handleOf, prev)
	}
	r.byHandle[handle] = id
	r.handleOf[id] = handle
}

func (r *Registry) clearHandleLocked(id uuid.UUID) {
	h, ok := r.handleOf[id]
	if !ok {
		return
	}
	delete(r.handleOf, id)
	if r.byHandle[h] == id {
		delete(r.byHandle, h)
	}
}

func sortByCreation(animals []model.TamedAnimal) {
	slices.SortFunc(animals, func(a, b model.TamedAnimal) int {
		if c := cmp.Compare(a.CreatedAt, b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
}
