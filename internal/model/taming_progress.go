package model

import "github.com/google/uuid"

// TamingPhase is the stage of an in-progress taming attempt.
// There is no "tamed" phase: completion discards the progress and
// creates a TamedAnimal instead.
type TamingPhase uint8

const (
	PhaseCalming TamingPhase = iota
	PhaseCalmed
	PhaseBondingFeed
	PhaseBondingMount
)

// String returns the phase name used in logs and events.
func (p TamingPhase) String() string {
	switch p {
	case PhaseCalming:
		return "CALMING"
	case PhaseCalmed:
		return "CALMED"
	case PhaseBondingFeed:
		return "BONDING_FEED"
	case PhaseBondingMount:
		return "BONDING_MOUNT"
	default:
		return "UNKNOWN"
	}
}

// TamingProgress is one in-progress taming attempt on a wild creature.
// Value type: every transition returns a new TamingProgress and never
// modifies the receiver. All ticks are absolute tick counter values.
type TamingProgress struct {
	id        uuid.UUID
	speciesID string
	playerID  uuid.UUID
	phase     TamingPhase

	calmingStartTick  int64
	calmExpiresTick   int64 // 0 = not calmed yet
	trust             int
	lastTrustGainTick int64
	mountStartTick    int64 // 0 = not mounted
}

// StartCalming creates a fresh attempt in the CALMING phase.
func StartCalming(id uuid.UUID, speciesID string, playerID uuid.UUID, tick int64) TamingProgress {
	return TamingProgress{
		id:               id,
		speciesID:        speciesID,
		playerID:         playerID,
		phase:            PhaseCalming,
		calmingStartTick: tick,
	}
}

// ID returns the permanent identity the creature keeps once tamed.
func (t TamingProgress) ID() uuid.UUID {
	return t.id
}

// SpeciesID returns the species identifier.
func (t TamingProgress) SpeciesID() string {
	return t.speciesID
}

// PlayerID returns the identity of the player performing the attempt.
func (t TamingProgress) PlayerID() uuid.UUID {
	return t.playerID
}

// Phase returns the current phase.
func (t TamingProgress) Phase() TamingPhase {
	return t.phase
}

func (t TamingProgress) CalmingStartTick() int64 {
	return t.calmingStartTick
}

func (t TamingProgress) CalmExpiresTick() int64 {
	return t.calmExpiresTick
}

// Trust returns accumulated trust. It may exceed the species requirement.
func (t TamingProgress) Trust() int {
	return t.trust
}

func (t TamingProgress) LastTrustGainTick() int64 {
	return t.lastTrustGainTick
}

func (t TamingProgress) MountStartTick() int64 {
	return t.mountStartTick
}

// Calmed moves to CALMED and opens the calmed window until tick+calmDuration.
func (t TamingProgress) Calmed(tick, calmDuration int64) TamingProgress {
	t.phase = PhaseCalmed
	t.calmExpiresTick = tick + calmDuration
	t.mountStartTick = 0
	return t
}

// BeginFeedBonding moves to BONDING_FEED from any phase. Timers are kept.
func (t TamingProgress) BeginFeedBonding() TamingProgress {
	t.phase = PhaseBondingFeed
	return t
}

// BeginMountBonding moves to BONDING_MOUNT and records the mount tick.
func (t TamingProgress) BeginMountBonding(tick int64) TamingProgress {
	t.phase = PhaseBondingMount
	t.mountStartTick = tick
	return t
}

// GainTrust adds amount to trust.
func (t TamingProgress) GainTrust(amount int, tick int64) TamingProgress {
	t.trust += amount
	t.lastTrustGainTick = tick
	return t
}

// SetTrust overwrites trust. Used by continuous accrual while mounted.
func (t TamingProgress) SetTrust(value int, tick int64) TamingProgress {
	t.trust = value
	t.lastTrustGainTick = tick
	return t
}

// ResetMount reverts BONDING_MOUNT to CALMED. The mount tick is cleared
// in every phase.
func (t TamingProgress) ResetMount() TamingProgress {
	if t.phase == PhaseBondingMount {
		t.phase = PhaseCalmed
	}
	t.mountStartTick = 0
	return t
}

// IsCalmExpired reports whether the calmed window has closed at tick.
func (t TamingProgress) IsCalmExpired(tick int64) bool {
	return t.calmExpiresTick > 0 && tick >= t.calmExpiresTick
}

// IsMounted reports whether a mount start is recorded.
func (t TamingProgress) IsMounted() bool {
	return t.mountStartTick > 0
}

// MountedSecondsElapsed returns whole seconds ridden since the mount tick.
func (t TamingProgress) MountedSecondsElapsed(tick int64, tickRate int) int64 {
	if t.mountStartTick <= 0 || tickRate <= 0 {
		return 0
	}
	return (tick - t.mountStartTick) / int64(tickRate)
}

// CalmingElapsed returns ticks spent since calming started.
func (t TamingProgress) CalmingElapsed(tick int64) int64 {
	return tick - t.calmingStartTick
}

// HasRequiredTrust reports whether trust reached the species requirement.
func (t TamingProgress) HasRequiredTrust(rule *SpeciesRule) bool {
	return rule != nil && t.trust >= rule.RequiredTrust()
}
