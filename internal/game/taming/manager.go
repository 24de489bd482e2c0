// Package taming turns wild creatures into player-owned companions.
//
// A Manager tracks in-progress attempts by the transient handle of the
// wild creature, promotes finished attempts into the tamed Registry and
// publishes every state change on the event bus. Persistence, logging and
// metrics are bus subscribers; the Manager does not know about them.
//
// Expected negative outcomes (unknown species, missing attempt, wrong
// owner, not enough trust) are reported as ok=false, never as errors.
package taming

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/udisondev/taming/internal/data"
	"github.com/udisondev/taming/internal/event"
	"github.com/udisondev/taming/internal/model"
	"github.com/udisondev/taming/internal/world"
)

const (
	// DefaultTickRate is the number of ticks per second.
	DefaultTickRate = 20

	// MaxCustomNameLength is the longest custom name, in runes.
	MaxCustomNameLength = 32
)

// Cancellation reasons reported by hosts through CancelTaming.
const (
	CancelPlayerLeft    = "player_left"
	CancelCreatureFled  = "creature_fled"
	CancelCreatureDied  = "creature_died"
	CancelPlayerOffline = "player_offline"
)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithFeedingPolicy replaces DefaultFeedingPolicy.
func WithFeedingPolicy(p FeedingPolicy) ManagerOption {
	return func(m *Manager) {
		m.feeding = p
	}
}

// WithClock replaces time.Now for creation timestamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// WithTickRate sets ticks per second used for mounted trust accrual.
func WithTickRate(rate int) ManagerOption {
	return func(m *Manager) {
		if rate > 0 {
			m.tickRate = rate
		}
	}
}

// WithRegistry uses an existing tamed Registry.
func WithRegistry(r *Registry) ManagerOption {
	return func(m *Manager) {
		m.registry = r
	}
}

// Manager is the public operation surface of the taming core.
// Thread-safe. Events are published after internal locks are released.
type Manager struct {
	species  *data.SpeciesTable
	registry *Registry
	bus      *event.Bus
	players  *world.PlayerCache
	feeding  FeedingPolicy
	now      func() time.Time
	tickRate int

	// mu serializes read-modify-write sequences on progress and registry.
	mu sync.Mutex

	// progress: wild creature handle → attempt
	progress map[uint32]model.TamingProgress
}

// NewManager creates a Manager over species, publishing on bus.
func NewManager(species *data.SpeciesTable, bus *event.Bus, opts ...ManagerOption) *Manager {
	m := &Manager{
		species:  species,
		registry: NewRegistry(),
		bus:      bus,
		players:  world.NewPlayerCache(),
		feeding:  DefaultFeedingPolicy{},
		now:      time.Now,
		tickRate: DefaultTickRate,
		progress: make(map[uint32]model.TamingProgress),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BeginTick installs the tick counter and online players for this tick.
// The player snapshot is replaced as a whole.
func (m *Manager) BeginTick(tick int64, players []model.OnlinePlayer) {
	m.players.Replace(tick, players)
}

// Tick returns the current tick counter.
func (m *Manager) Tick() int64 {
	return m.players.Tick()
}

// TickRate returns ticks per second.
func (m *Manager) TickRate() int {
	return m.tickRate
}

// Players returns the online players of the current tick.
func (m *Manager) Players() *world.PlayerSnapshot {
	return m.players.Snapshot()
}

// Species returns the species table.
func (m *Manager) Species() *data.SpeciesTable {
	return m.species
}

// Registry returns the tamed animal registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Bus returns the event bus the manager publishes on.
func (m *Manager) Bus() *event.Bus {
	return m.bus
}

// StartCalming begins an attempt on the wild creature behind handle.
// A zero id is replaced by a fresh one. Fails if the species is unknown,
// the creature is already tamed or an attempt exists for handle.
func (m *Manager) StartCalming(handle uint32, id uuid.UUID, speciesID string, playerID uuid.UUID) (model.TamingProgress, bool) {
	if !m.species.Contains(speciesID) {
		return model.TamingProgress{}, false
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	tick := m.Tick()

	m.mu.Lock()
	if _, exists := m.progress[handle]; exists || m.registry.HasHandle(handle) {
		m.mu.Unlock()
		return model.TamingProgress{}, false
	}
	p := model.StartCalming(id, speciesID, playerID, tick)
	m.progress[handle] = p
	m.mu.Unlock()

	m.bus.Publish(event.TamingStarted{
		Tick:      tick,
		Handle:    handle,
		ID:        id,
		SpeciesID: speciesID,
		PlayerID:  playerID,
	})
	return p, true
}

// UpdateCalming is called while playerID keeps calming the creature.
// Once calming lasted the species' calming duration the creature is
// calmed. Returns the current attempt.
func (m *Manager) UpdateCalming(handle uint32, playerID uuid.UUID) (model.TamingProgress, bool) {
	tick := m.Tick()

	m.mu.Lock()
	p, ok := m.progress[handle]
	if !ok || p.PlayerID() != playerID {
		m.mu.Unlock()
		return model.TamingProgress{}, false
	}
	rule, ok := m.species.Get(p.SpeciesID())
	if !ok {
		m.mu.Unlock()
		return model.TamingProgress{}, false
	}
	if p.Phase() != model.PhaseCalming || p.CalmingElapsed(tick) < rule.CalmingDuration() {
		m.mu.Unlock()
		return p, true
	}
	p = p.Calmed(tick, rule.CalmedDuration())
	m.progress[handle] = p
	m.mu.Unlock()

	m.bus.Publish(event.CreatureCalmed{
		Tick:          tick,
		Handle:        handle,
		ID:            p.ID(),
		SpeciesID:     p.SpeciesID(),
		PlayerID:      playerID,
		ExpiresAtTick: p.CalmExpiresTick(),
	})
	return p, true
}

// Feed offers food to the creature. The FeedingPolicy decides whether the
// feed counts and how much trust it gives.
func (m *Manager) Feed(handle uint32, playerID uuid.UUID, food string) (model.TamingProgress, bool) {
	tick := m.Tick()

	m.mu.Lock()
	p, ok := m.progress[handle]
	if !ok {
		m.mu.Unlock()
		return model.TamingProgress{}, false
	}
	rule, ok := m.species.Get(p.SpeciesID())
	if !ok {
		m.mu.Unlock()
		return model.TamingProgress{}, false
	}
	next, ok := m.feeding.Feed(p, rule, playerID, food, tick)
	if !ok {
		m.mu.Unlock()
		return model.TamingProgress{}, false
	}
	m.progress[handle] = next
	m.mu.Unlock()

	m.publishTrust(tick, handle, p, next, rule)
	return next, true
}

// Mount starts mounted bonding. The species must be mountable and the
// creature calmed (or bonding) with an open calmed window.
func (m *Manager) Mount(handle uint32, playerID uuid.UUID) (model.TamingProgress, bool) {
	tick := m.Tick()

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.progress[handle]
	if !ok || p.PlayerID() != playerID {
		return model.TamingProgress{}, false
	}
	rule, ok := m.species.Get(p.SpeciesID())
	if !ok || !rule.Mountable() {
		return model.TamingProgress{}, false
	}
	switch p.Phase() {
	case model.PhaseBondingMount:
		return p, true
	case model.PhaseCalmed, model.PhaseBondingFeed:
	default:
		return model.TamingProgress{}, false
	}
	if p.IsCalmExpired(tick) {
		return model.TamingProgress{}, false
	}

	p = p.BeginMountBonding(tick)
	m.progress[handle] = p
	return p, true
}

// AccrueMountTrust credits trust for every whole second ridden since the
// last credit. Called by the host each tick while the player stays mounted.
// Trust is capped at the species requirement.
func (m *Manager) AccrueMountTrust(handle uint32) (model.TamingProgress, bool) {
	tick := m.Tick()

	m.mu.Lock()
	p, ok := m.progress[handle]
	if !ok || p.Phase() != model.PhaseBondingMount || !p.IsMounted() {
		m.mu.Unlock()
		return model.TamingProgress{}, false
	}
	rule, ok := m.species.Get(p.SpeciesID())
	if !ok {
		m.mu.Unlock()
		return model.TamingProgress{}, false
	}

	elapsed := p.MountedSecondsElapsed(tick, m.tickRate)
	var credited int64
	if p.LastTrustGainTick() >= p.MountStartTick() {
		credited = (p.LastTrustGainTick() - p.MountStartTick()) / int64(m.tickRate)
	}
	seconds := elapsed - credited
	if seconds <= 0 {
		m.mu.Unlock()
		return p, true
	}

	trust := p.Trust() + int(seconds)*rule.TrustPerMountedSecond()
	trust = min(trust, max(rule.RequiredTrust(), p.Trust()))
	next := p.SetTrust(trust, p.MountStartTick()+elapsed*int64(m.tickRate))
	m.progress[handle] = next
	m.mu.Unlock()

	m.publishTrust(tick, handle, p, next, rule)
	return next, true
}

// Dismount ends mounted bonding; the creature goes back to CALMED.
func (m *Manager) Dismount(handle uint32) (model.TamingProgress, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.progress[handle]
	if !ok {
		return model.TamingProgress{}, false
	}
	p = p.ResetMount()
	m.progress[handle] = p
	return p, true
}

// CompleteTaming promotes the attempt on handle into a FOLLOW-mode tamed
// animal homed at position. Fails when there is no attempt, the species
// is unknown or trust is below the requirement.
// An empty ownerName is resolved from the online players.
func (m *Manager) CompleteTaming(handle uint32, ownerName string, position model.Location) (model.TamedAnimal, bool) {
	tick := m.Tick()

	m.mu.Lock()
	p, ok := m.progress[handle]
	if !ok {
		m.mu.Unlock()
		return model.TamedAnimal{}, false
	}
	rule, ok := m.species.Get(p.SpeciesID())
	if !ok || !p.HasRequiredTrust(rule) {
		m.mu.Unlock()
		return model.TamedAnimal{}, false
	}

	if ownerName == "" {
		if player, online := m.players.Snapshot().Player(p.PlayerID()); online {
			ownerName = player.Name
		}
	}
	animal := model.NewTamedAnimal(
		p.ID(),
		p.PlayerID(),
		ownerName,
		rule.ID(),
		position,
		rule.MaxFollowDistance(),
		m.now().UnixMilli(),
	)
	m.registry.Register(animal, handle)
	delete(m.progress, handle)
	m.mu.Unlock()

	m.bus.Publish(event.TamingCompleted{
		Tick:   tick,
		Handle: handle,
		Animal: animal,
	})
	return animal, true
}

// CancelTaming drops the attempt on handle.
func (m *Manager) CancelTaming(handle uint32, reason string) bool {
	tick := m.Tick()

	m.mu.Lock()
	p, ok := m.progress[handle]
	if ok {
		delete(m.progress, handle)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.bus.Publish(event.TamingCancelled{
		Tick:      tick,
		Handle:    handle,
		ID:        p.ID(),
		SpeciesID: p.SpeciesID(),
		PlayerID:  p.PlayerID(),
		Reason:    reason,
	})
	return true
}

// ExpireCalms drops every attempt whose calmed window closed before it
// reached the required trust. Mounted attempts are kept until dismount.
// The host calls it once per tick. Returns the number of dropped attempts.
func (m *Manager) ExpireCalms() int {
	tick := m.Tick()

	var expired []event.CalmExpired

	m.mu.Lock()
	for handle, p := range m.progress {
		if p.IsMounted() || !p.IsCalmExpired(tick) {
			continue
		}
		if rule, ok := m.species.Get(p.SpeciesID()); ok && p.HasRequiredTrust(rule) {
			continue
		}
		delete(m.progress, handle)
		expired = append(expired, event.CalmExpired{
			Tick:      tick,
			Handle:    handle,
			ID:        p.ID(),
			SpeciesID: p.SpeciesID(),
			PlayerID:  p.PlayerID(),
			Trust:     p.Trust(),
		})
	}
	m.mu.Unlock()

	for _, e := range expired {
		m.bus.Publish(e)
	}
	return len(expired)
}

// ToggleBehaviorMode flips FOLLOW/STAY for the owner. Switching to STAY
// makes position the new home.
func (m *Manager) ToggleBehaviorMode(id, playerID uuid.UUID, position model.Location) bool {
	tick := m.Tick()

	m.mu.Lock()
	a, ok := m.registry.Get(id)
	if !ok || !a.IsOwnedBy(playerID) {
		m.mu.Unlock()
		return false
	}
	oldMode := a.Mode
	next := a.WithMode(oldMode.Toggle())
	if next.Mode == model.ModeStay {
		next = next.WithHome(position)
	}
	m.registry.Update(next)
	m.mu.Unlock()

	m.bus.Publish(event.BehaviorModeChanged{
		Tick:    tick,
		Animal:  next,
		OldMode: oldMode,
	})
	return true
}

// ReleaseTamedAnimal lets the owner give up the animal.
func (m *Manager) ReleaseTamedAnimal(id, playerID uuid.UUID) bool {
	tick := m.Tick()

	m.mu.Lock()
	a, ok := m.registry.Get(id)
	if !ok || !a.IsOwnedBy(playerID) {
		m.mu.Unlock()
		return false
	}
	m.registry.Unregister(id)
	m.mu.Unlock()

	m.bus.Publish(event.CreatureLost{
		Tick:   tick,
		Animal: a,
		Reason: event.LostReleased,
	})
	return true
}

// MarkLost removes an animal that died or vanished from the world.
func (m *Manager) MarkLost(id uuid.UUID, reason string) bool {
	tick := m.Tick()

	m.mu.Lock()
	a, ok := m.registry.Unregister(id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.bus.Publish(event.CreatureLost{
		Tick:   tick,
		Animal: a,
		Reason: reason,
	})
	return true
}

// PetTamedAnimal lets the owner pet the animal.
func (m *Manager) PetTamedAnimal(id, playerID uuid.UUID) bool {
	a, ok := m.registry.Get(id)
	if !ok || !a.IsOwnedBy(playerID) {
		return false
	}
	m.bus.Publish(event.CreaturePetted{
		Tick:     m.Tick(),
		Animal:   a,
		PlayerID: playerID,
	})
	return true
}

// RenameTamedAnimal sets the custom name. A blank name clears it.
func (m *Manager) RenameTamedAnimal(id, playerID uuid.UUID, name string) bool {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxCustomNameLength {
		return false
	}
	tick := m.Tick()

	m.mu.Lock()
	a, ok := m.registry.Get(id)
	if !ok || !a.IsOwnedBy(playerID) {
		m.mu.Unlock()
		return false
	}
	oldName := a.CustomName
	next := a.WithCustomName(name)
	m.registry.Update(next)
	m.mu.Unlock()

	m.bus.Publish(event.TamedAnimalRenamed{
		Tick:    tick,
		Animal:  next,
		OldName: oldName,
	})
	return true
}

// AttachHandle links a tamed animal to its (re)spawned live entity.
func (m *Manager) AttachHandle(id uuid.UUID, handle uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.progress[handle]; busy {
		return false
	}
	return m.registry.UpdateHandle(id, handle)
}

// DetachHandle forgets the live entity of a tamed animal (despawn,
// chunk unload) without removing the animal.
func (m *Manager) DetachHandle(id uuid.UUID) bool {
	return m.registry.UpdateHandle(id, NoHandle)
}

// OwnerOnline reports whether the owner of id is online this tick.
func (m *Manager) OwnerOnline(id uuid.UUID) bool {
	a, ok := m.registry.Get(id)
	if !ok {
		return false
	}
	return m.players.Snapshot().IsOnline(a.OwnerID)
}

// Restore registers persisted animals without a live handle.
func (m *Manager) Restore(animals []model.TamedAnimal) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range animals {
		if !m.species.Contains(a.SpeciesID) {
			slog.Warn("restoring tamed animal of unknown species",
				"id", a.ID,
				"species", a.SpeciesID)
		}
		m.registry.Register(a, NoHandle)
	}
	return len(animals)
}

// LoadFromStore restores every animal persisted in store.
func (m *Manager) LoadFromStore(ctx context.Context, store Store) (int, error) {
	animals, err := store.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading tamed animals: %w", err)
	}
	n := m.Restore(animals)
	slog.Info("tamed animals restored", "count", n)
	return n, nil
}

// GetTamedAnimal returns the tamed animal with identity id.
func (m *Manager) GetTamedAnimal(id uuid.UUID) (model.TamedAnimal, bool) {
	return m.registry.Get(id)
}

// GetTamedAnimalByHandle returns the tamed animal behind a live handle.
func (m *Manager) GetTamedAnimalByHandle(handle uint32) (model.TamedAnimal, bool) {
	return m.registry.GetByHandle(handle)
}

// GetAnimalsOwnedBy returns a copy of the player's animals.
func (m *Manager) GetAnimalsOwnedBy(playerID uuid.UUID) []model.TamedAnimal {
	return m.registry.GetByOwner(playerID)
}

// UpdateTamedAnimal replaces a registered animal. Panics if unregistered.
func (m *Manager) UpdateTamedAnimal(animal model.TamedAnimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry.Update(animal)
}

// TamedCount returns the number of registered tamed animals.
func (m *Manager) TamedCount() int {
	return m.registry.Count()
}

// GetTamingProgress returns the attempt on handle.
func (m *Manager) GetTamingProgress(handle uint32) (model.TamingProgress, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.progress[handle]
	return p, ok
}

// RemoveTamingProgress drops the attempt on handle without publishing.
func (m *Manager) RemoveTamingProgress(handle uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.progress[handle]
	delete(m.progress, handle)
	return ok
}

// ActiveAttempts returns the number of in-progress attempts.
func (m *Manager) ActiveAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.progress)
}

func (m *Manager) publishTrust(tick int64, handle uint32, before, after model.TamingProgress, rule *model.SpeciesRule) {
	if before.Trust() == after.Trust() {
		return
	}
	m.bus.Publish(event.TrustChanged{
		Tick:          tick,
		Handle:        handle,
		ID:            after.ID(),
		SpeciesID:     after.SpeciesID(),
		PlayerID:      after.PlayerID(),
		Phase:         after.Phase(),
		OldTrust:      before.Trust(),
		NewTrust:      after.Trust(),
		RequiredTrust: rule.RequiredTrust(),
	})
}
