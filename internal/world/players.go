// Package world holds the per-tick view of the host simulation that the
// taming core needs: the tick counter and the set of online players.
package world

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/udisondev/taming/internal/model"
)

// PlayerSnapshot is an immutable view of the online players for one tick.
type PlayerSnapshot struct {
	tick     int64
	byID     map[uuid.UUID]model.OnlinePlayer
	byObject map[uint32]uuid.UUID
}

// Tick returns the tick the snapshot was taken at.
func (s *PlayerSnapshot) Tick() int64 {
	return s.tick
}

// Player returns the online player with the given permanent identity.
func (s *PlayerSnapshot) Player(id uuid.UUID) (model.OnlinePlayer, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// PlayerByObjectID resolves a transient handle to the online player.
func (s *PlayerSnapshot) PlayerByObjectID(objectID uint32) (model.OnlinePlayer, bool) {
	id, ok := s.byObject[objectID]
	if !ok {
		return model.OnlinePlayer{}, false
	}
	return s.Player(id)
}

// IsOnline reports whether id is present in this tick.
func (s *PlayerSnapshot) IsOnline(id uuid.UUID) bool {
	_, ok := s.byID[id]
	return ok
}

// Count returns the number of online players.
func (s *PlayerSnapshot) Count() int {
	return len(s.byID)
}

// PlayerCache holds the current PlayerSnapshot.
// Replace swaps the whole snapshot atomically: readers observe the
// previous or the new snapshot, never a partially built one.
type PlayerCache struct {
	current atomic.Pointer[PlayerSnapshot]
}

// NewPlayerCache creates a cache with an empty snapshot at tick 0.
func NewPlayerCache() *PlayerCache {
	c := &PlayerCache{}
	c.Replace(0, nil)
	return c
}

// Replace builds a new snapshot for tick and publishes it.
func (c *PlayerCache) Replace(tick int64, players []model.OnlinePlayer) {
	snap := &PlayerSnapshot{
		tick:     tick,
		byID:     make(map[uuid.UUID]model.OnlinePlayer, len(players)),
		byObject: make(map[uint32]uuid.UUID, len(players)),
	}
	for _, p := range players {
		snap.byID[p.ID] = p
		if p.ObjectID != 0 {
			snap.byObject[p.ObjectID] = p.ID
		}
	}
	c.current.Store(snap)
}

// Snapshot returns the current snapshot. Never nil.
func (c *PlayerCache) Snapshot() *PlayerSnapshot {
	return c.current.Load()
}

// Tick returns the tick of the current snapshot.
func (c *PlayerCache) Tick() int64 {
	return c.Snapshot().Tick()
}
