package event

import (
	"github.com/google/uuid"

	"github.com/udisondev/taming/internal/model"
)

// Kind identifies an event type. Subscriptions match kinds exactly.
type Kind string

const (
	KindTamingStarted       Kind = "taming_started"
	KindCreatureCalmed      Kind = "creature_calmed"
	KindCalmExpired         Kind = "calm_expired"
	KindTamingCancelled     Kind = "taming_cancelled"
	KindTrustChanged        Kind = "trust_changed"
	KindTamingCompleted     Kind = "taming_completed"
	KindBehaviorModeChanged Kind = "behavior_mode_changed"
	KindCreatureLost        Kind = "creature_lost"
	KindCreaturePetted      Kind = "creature_petted"
	KindTamedAnimalRenamed  Kind = "tamed_animal_renamed"
)

// Event is a notification about a taming state change.
// Events are values and are never queried back.
type Event interface {
	Kind() Kind
}

// Reasons carried by CreatureLost.
const (
	LostReleased  = "released"
	LostDied      = "died"
	LostDespawned = "despawned"
)

// TamingStarted is published when a player starts calming a wild creature.
type TamingStarted struct {
	Tick      int64
	Handle    uint32
	ID        uuid.UUID
	SpeciesID string
	PlayerID  uuid.UUID
}

// CreatureCalmed is published when calming persisted long enough.
type CreatureCalmed struct {
	Tick          int64
	Handle        uint32
	ID            uuid.UUID
	SpeciesID     string
	PlayerID      uuid.UUID
	ExpiresAtTick int64
}

// CalmExpired is published when the calmed window closed before taming finished.
type CalmExpired struct {
	Tick      int64
	Handle    uint32
	ID        uuid.UUID
	SpeciesID string
	PlayerID  uuid.UUID
	Trust     int
}

// TamingCancelled is published when an attempt is dropped by the host
// (player walked away, creature fled or died).
type TamingCancelled struct {
	Tick      int64
	Handle    uint32
	ID        uuid.UUID
	SpeciesID string
	PlayerID  uuid.UUID
	Reason    string
}

// TrustChanged is published after feeding or mounted accrual.
type TrustChanged struct {
	Tick          int64
	Handle        uint32
	ID            uuid.UUID
	SpeciesID     string
	PlayerID      uuid.UUID
	Phase         model.TamingPhase
	OldTrust      int
	NewTrust      int
	RequiredTrust int
}

// TamingCompleted is published after a TamedAnimal was registered.
type TamingCompleted struct {
	Tick   int64
	Handle uint32
	Animal model.TamedAnimal
}

// BehaviorModeChanged is published after FOLLOW/STAY toggled.
type BehaviorModeChanged struct {
	Tick    int64
	Animal  model.TamedAnimal
	OldMode model.BehaviorMode
}

// CreatureLost is published when a tamed animal left the registry.
type CreatureLost struct {
	Tick   int64
	Animal model.TamedAnimal
	Reason string
}

// CreaturePetted is published when the owner pets the animal.
type CreaturePetted struct {
	Tick     int64
	Animal   model.TamedAnimal
	PlayerID uuid.UUID
}

// TamedAnimalRenamed is published after a custom name change.
type TamedAnimalRenamed struct {
	Tick    int64
	Animal  model.TamedAnimal
	OldName string
}

func (TamingStarted) Kind() Kind       { return KindTamingStarted }
func (CreatureCalmed) Kind() Kind      { return KindCreatureCalmed }
func (CalmExpired) Kind() Kind         { return KindCalmExpired }
func (TamingCancelled) Kind() Kind     { return KindTamingCancelled }
func (TrustChanged) Kind() Kind        { return KindTrustChanged }
func (TamingCompleted) Kind() Kind     { return KindTamingCompleted }
func (BehaviorModeChanged) Kind() Kind { return KindBehaviorModeChanged }
func (CreatureLost) Kind() Kind        { return KindCreatureLost }
func (CreaturePetted) Kind() Kind      { return KindCreaturePetted }
func (TamedAnimalRenamed) Kind() Kind  { return KindTamedAnimalRenamed }
