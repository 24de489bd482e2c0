package taming

import (
	"github.com/google/uuid"

	"github.com/udisondev/taming/internal/model"
)

// FeedingPolicy decides whether a feed is accepted and how it changes the
// attempt. ok=false rejects the feed and leaves the attempt untouched.
type FeedingPolicy interface {
	Feed(progress model.TamingProgress, rule *model.SpeciesRule, playerID uuid.UUID, food string, tick int64) (next model.TamingProgress, ok bool)
}

// FeedingPolicyFunc adapts a function to FeedingPolicy.
type FeedingPolicyFunc func(progress model.TamingProgress, rule *model.SpeciesRule, playerID uuid.UUID, food string, tick int64) (model.TamingProgress, bool)

// Feed implements FeedingPolicy.
func (f FeedingPolicyFunc) Feed(progress model.TamingProgress, rule *model.SpeciesRule, playerID uuid.UUID, food string, tick int64) (model.TamingProgress, bool) {
	return f(progress, rule, playerID, food, tick)
}

// DefaultFeedingPolicy accepts a feed when:
//   - the feeder is the player performing the attempt
//   - the creature is CALMED or already feed-bonding
//   - the calmed window is still open
//   - the species eats the food and gains trust from feeding
//
// Trust is capped at the species requirement.
type DefaultFeedingPolicy struct{}

// Feed implements FeedingPolicy.
func (DefaultFeedingPolicy) Feed(progress model.TamingProgress, rule *model.SpeciesRule, playerID uuid.UUID, food string, tick int64) (model.TamingProgress, bool) {
	if rule == nil || progress.PlayerID() != playerID {
		return progress, false
	}
	switch progress.Phase() {
	case model.PhaseCalmed, model.PhaseBondingFeed:
	default:
		return progress, false
	}
	if progress.IsCalmExpired(tick) {
		return progress, false
	}
	if !rule.AcceptsFood(food) || rule.TrustPerFeed() <= 0 {
		return progress, false
	}

	gain := min(rule.TrustPerFeed(), max(rule.RequiredTrust()-progress.Trust(), 0))
	return progress.BeginFeedBonding().GainTrust(gain, tick), true
}
