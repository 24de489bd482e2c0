package model

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Diet is the feeding category of a species.
type Diet string

const (
	DietHerbivore Diet = "HERBIVORE"
	DietCarnivore Diet = "CARNIVORE"
	DietOmnivore  Diet = "OMNIVORE"
)

// ParseDiet converts a config value into a Diet (case-insensitive).
func ParseDiet(s string) (Diet, error) {
	d := Diet(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown diet %q", s)
	}
	return d, nil
}

// Valid reports whether d is one of the known diets.
func (d Diet) Valid() bool {
	switch d {
	case DietHerbivore, DietCarnivore, DietOmnivore:
		return true
	}
	return false
}

// ErrInvalidSpeciesRule is wrapped by every validation failure of NewSpeciesRule.
var ErrInvalidSpeciesRule = errors.New("invalid species rule")

// SpeciesRuleParams holds raw values for NewSpeciesRule.
type SpeciesRuleParams struct {
	ID                    string
	Diet                  Diet
	AcceptedFoods         []string
	Mountable             bool
	CalmingDistance       float64
	CalmingDuration       int64 // ticks
	CalmedDuration        int64 // ticks
	TrustPerFeed          int
	TrustPerMountedSecond int
	RequiredTrust         int
	MaxFollowDistance     float64
}

// SpeciesRule is the immutable taming configuration of one species.
// Construct only via NewSpeciesRule.
type SpeciesRule struct {
	id                    string
	diet                  Diet
	acceptedFoods         []string
	mountable             bool
	calmingDistance       float64
	calmingDuration       int64
	calmedDuration        int64
	trustPerFeed          int
	trustPerMountedSecond int
	requiredTrust         int
	maxFollowDistance     float64
}

// NewSpeciesRule validates params and returns the rule.
// Mountable species must gain trust while ridden, and only mountable ones may.
func NewSpeciesRule(p SpeciesRuleParams) (*SpeciesRule, error) {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return nil, fmt.Errorf("%w: species id is blank", ErrInvalidSpeciesRule)
	}
	if !p.Diet.Valid() {
		return nil, fmt.Errorf("%w: %s: unknown diet %q", ErrInvalidSpeciesRule, id, p.Diet)
	}
	if len(p.AcceptedFoods) == 0 {
		return nil, fmt.Errorf("%w: %s: accepted_foods is empty", ErrInvalidSpeciesRule, id)
	}
	foods := make([]string, 0, len(p.AcceptedFoods))
	for _, f := range p.AcceptedFoods {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, fmt.Errorf("%w: %s: accepted_foods contains a blank entry", ErrInvalidSpeciesRule, id)
		}
		foods = append(foods, f)
	}

	switch {
	case !positiveFinite(p.CalmingDistance):
		return nil, fmt.Errorf("%w: %s: calming_distance must be a finite number > 0", ErrInvalidSpeciesRule, id)
	case p.CalmingDuration <= 0:
		return nil, fmt.Errorf("%w: %s: calming_duration must be > 0", ErrInvalidSpeciesRule, id)
	case p.CalmedDuration <= 0:
		return nil, fmt.Errorf("%w: %s: calmed_duration must be > 0", ErrInvalidSpeciesRule, id)
	case p.TrustPerFeed < 0:
		return nil, fmt.Errorf("%w: %s: trust_per_feed must be >= 0", ErrInvalidSpeciesRule, id)
	case p.TrustPerMountedSecond < 0:
		return nil, fmt.Errorf("%w: %s: trust_per_mounted_second must be >= 0", ErrInvalidSpeciesRule, id)
	case p.RequiredTrust <= 0:
		return nil, fmt.Errorf("%w: %s: required_trust must be > 0", ErrInvalidSpeciesRule, id)
	case !positiveFinite(p.MaxFollowDistance):
		return nil, fmt.Errorf("%w: %s: max_follow_distance must be a finite number > 0", ErrInvalidSpeciesRule, id)
	}

	if p.Mountable && p.TrustPerMountedSecond == 0 {
		return nil, fmt.Errorf("%w: %s: mountable species needs trust_per_mounted_second > 0", ErrInvalidSpeciesRule, id)
	}
	if !p.Mountable && p.TrustPerMountedSecond > 0 {
		return nil, fmt.Errorf("%w: %s: trust_per_mounted_second set on a non-mountable species", ErrInvalidSpeciesRule, id)
	}

	return &SpeciesRule{
		id:                    id,
		diet:                  p.Diet,
		acceptedFoods:         foods,
		mountable:             p.Mountable,
		calmingDistance:       p.CalmingDistance,
		calmingDuration:       p.CalmingDuration,
		calmedDuration:        p.CalmedDuration,
		trustPerFeed:          p.TrustPerFeed,
		trustPerMountedSecond: p.TrustPerMountedSecond,
		requiredTrust:         p.RequiredTrust,
		maxFollowDistance:     p.MaxFollowDistance,
	}, nil
}

// positiveFinite rejects NaN, which fails every ordered comparison.
func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// ID returns the species identifier.
func (r *SpeciesRule) ID() string {
	return r.id
}

func (r *SpeciesRule) Diet() Diet {
	return r.diet
}

// Mountable reports whether the species can be ridden while bonding.
func (r *SpeciesRule) Mountable() bool {
	return r.mountable
}

// CalmingDistance is the max distance a calming player may keep.
func (r *SpeciesRule) CalmingDistance() float64 {
	return r.calmingDistance
}

// CalmingDuration is the number of ticks calming must persist.
func (r *SpeciesRule) CalmingDuration() int64 {
	return r.calmingDuration
}

// CalmedDuration is the number of ticks the calmed window stays open.
func (r *SpeciesRule) CalmedDuration() int64 {
	return r.calmedDuration
}

func (r *SpeciesRule) TrustPerFeed() int {
	return r.trustPerFeed
}

func (r *SpeciesRule) TrustPerMountedSecond() int {
	return r.trustPerMountedSecond
}

// RequiredTrust is the trust needed to complete taming.
func (r *SpeciesRule) RequiredTrust() int {
	return r.requiredTrust
}

func (r *SpeciesRule) MaxFollowDistance() float64 {
	return r.maxFollowDistance
}

// AcceptedFoods returns a copy of the accepted food identifiers.
func (r *SpeciesRule) AcceptedFoods() []string {
	return slices.Clone(r.acceptedFoods)
}

// AcceptsFood reports whether food is in the accepted list (case-insensitive).
func (r *SpeciesRule) AcceptsFood(food string) bool {
	food = strings.TrimSpace(food)
	for _, f := range r.acceptedFoods {
		if strings.EqualFold(f, food) {
			return true
		}
	}
	return false
}
