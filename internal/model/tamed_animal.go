package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// BehaviorMode controls whether a tamed animal trails its owner or holds position.
type BehaviorMode string

const (
	ModeFollow BehaviorMode = "FOLLOW"
	ModeStay   BehaviorMode = "STAY"
)

// ParseBehaviorMode converts a persisted value into a BehaviorMode.
func ParseBehaviorMode(s string) (BehaviorMode, error) {
	switch m := BehaviorMode(strings.ToUpper(strings.TrimSpace(s))); m {
	case ModeFollow, ModeStay:
		return m, nil
	}
	return "", fmt.Errorf("unknown behavior mode %q", s)
}

// Toggle flips FOLLOW and STAY.
func (m BehaviorMode) Toggle() BehaviorMode {
	if m == ModeFollow {
		return ModeStay
	}
	return ModeFollow
}

// TamedAnimal is a creature owned by a player.
// Value type: updates go through the With* helpers and a registry Update.
type TamedAnimal struct {
	ID                uuid.UUID
	OwnerID           uuid.UUID
	OwnerName         string
	SpeciesID         string
	Mode              BehaviorMode
	Home              Location
	MaxFollowDistance float64
	CreatedAt         int64  // unix milliseconds
	CustomName        string // empty = none
}

// NewTamedAnimal creates a FOLLOW-mode animal homed at home.
func NewTamedAnimal(id, ownerID uuid.UUID, ownerName, speciesID string, home Location, maxFollow float64, createdAt int64) TamedAnimal {
	return TamedAnimal{
		ID:                id,
		OwnerID:           ownerID,
		OwnerName:         ownerName,
		SpeciesID:         speciesID,
		Mode:              ModeFollow,
		Home:              home,
		MaxFollowDistance: maxFollow,
		CreatedAt:         createdAt,
	}
}

// IsOwnedBy reports whether playerID is the recorded owner.
func (a TamedAnimal) IsOwnedBy(playerID uuid.UUID) bool {
	return a.OwnerID == playerID
}

// HasCustomName reports whether the owner renamed the animal.
func (a TamedAnimal) HasCustomName() bool {
	return a.CustomName != ""
}

// DisplayName returns the custom name, or the species id when unnamed.
func (a TamedAnimal) DisplayName() string {
	if a.CustomName != "" {
		return a.CustomName
	}
	return a.SpeciesID
}

func (a TamedAnimal) WithMode(m BehaviorMode) TamedAnimal {
	a.Mode = m
	return a
}

func (a TamedAnimal) WithHome(home Location) TamedAnimal {
	a.Home = home
	return a
}

func (a TamedAnimal) WithCustomName(name string) TamedAnimal {
	a.CustomName = name
	return a
}

// WithOwner transfers the animal to another player.
func (a TamedAnimal) WithOwner(ownerID uuid.UUID, ownerName string) TamedAnimal {
	a.OwnerID = ownerID
	a.OwnerName = ownerName
	return a
}
