package taming

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/taming/internal/model"
)

// Store persists tamed animals.
// Implemented by db.TamedAnimalRepository, db.SQLiteStore and MemoryStore.
type Store interface {
	LoadAll(ctx context.Context) ([]model.TamedAnimal, error)
	Save(ctx context.Context, animal model.TamedAnimal) error
	// Update overwrites an existing record. A missing record is left
	// missing and is not an error.
	Update(ctx context.Context, animal model.TamedAnimal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemoryStore is a Store kept in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu      sync.Mutex
	animals map[uuid.UUID]model.TamedAnimal
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		animals: make(map[uuid.UUID]model.TamedAnimal),
	}
}

// LoadAll implements Store.
func (s *MemoryStore) LoadAll(_ context.Context) ([]model.TamedAnimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]model.TamedAnimal, 0, len(s.animals))
	for _, a := range s.animals {
		result = append(result, a)
	}
	sortByCreation(result)
	return result, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, animal model.TamedAnimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animals[animal.ID] = animal
	return nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, animal model.TamedAnimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.animals[animal.ID]; ok {
		s.animals[animal.ID] = animal
	}
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.animals, id)
	return nil
}
