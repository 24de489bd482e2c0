// Package testutil holds fixtures and helpers shared by tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"

	"github.com/udisondev/taming/internal/data"
	"github.com/udisondev/taming/internal/model"
)

// WolfParams is a feed-tamed carnivore: 3 trust, 1 per feed.
func WolfParams() model.SpeciesRuleParams {
	return model.SpeciesRuleParams{
		ID:                "wolf",
		Diet:              model.DietCarnivore,
		AcceptedFoods:     []string{"raw_meat"},
		CalmingDistance:   8,
		CalmingDuration:   100,
		CalmedDuration:    600,
		TrustPerFeed:      1,
		RequiredTrust:     3,
		MaxFollowDistance: 24,
	}
}

// HorseParams is a mountable herbivore: 10 trust, 1 per mounted second.
func HorseParams() model.SpeciesRuleParams {
	return model.SpeciesRuleParams{
		ID:                    "horse",
		Diet:                  model.DietHerbivore,
		AcceptedFoods:         []string{"wheat"},
		Mountable:             true,
		CalmingDistance:       6,
		CalmingDuration:       40,
		CalmedDuration:        2000,
		TrustPerFeed:          2,
		TrustPerMountedSecond: 1,
		RequiredTrust:         10,
		MaxFollowDistance:     16,
	}
}

// Rule builds a rule from params, failing the test on validation errors.
func Rule(tb testing.TB, p model.SpeciesRuleParams) *model.SpeciesRule {
	tb.Helper()

	r, err := model.NewSpeciesRule(p)
	if err != nil {
		tb.Fatalf("building species rule %q: %v", p.ID, err)
	}
	return r
}

// SpeciesTable returns a table holding the wolf and horse fixtures.
func SpeciesTable(tb testing.TB) *data.SpeciesTable {
	tb.Helper()

	table := data.NewSpeciesTable()
	for _, p := range []model.SpeciesRuleParams{WolfParams(), HorseParams()} {
		if err := table.Register(Rule(tb, p)); err != nil {
			tb.Fatalf("registering %q: %v", p.ID, err)
		}
	}
	return table
}

// Player returns an online player with a fresh identity.
func Player(name string, objectID uint32) model.OnlinePlayer {
	return model.OnlinePlayer{ID: uuid.New(), ObjectID: objectID, Name: name}
}
