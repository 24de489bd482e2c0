package data

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/taming/internal/model"
)

func newTestRule(t *testing.T, id string, requiredTrust int) *model.SpeciesRule {
	t.Helper()
	r, err := model.NewSpeciesRule(model.SpeciesRuleParams{
		ID:                id,
		Diet:              model.DietCarnivore,
		AcceptedFoods:     []string{"raw_meat"},
		CalmingDistance:   8,
		CalmingDuration:   100,
		CalmedDuration:    600,
		TrustPerFeed:      1,
		RequiredTrust:     requiredTrust,
		MaxFollowDistance: 24,
	})
	require.NoError(t, err)
	return r
}

func TestSpeciesTable_Register(t *testing.T) {
	table := NewSpeciesTable()
	wolf := newTestRule(t, "wolf", 3)

	require.NoError(t, table.Register(wolf))

	got, ok := table.Get("wolf")
	require.True(t, ok)
	assert.Same(t, wolf, got)
	assert.True(t, table.Contains("wolf"))
	assert.False(t, table.Contains("bear"))
	assert.Equal(t, 1, table.Count())
}

func TestSpeciesTable_DuplicateKeepsFirst(t *testing.T) {
	table := NewSpeciesTable()
	first := newTestRule(t, "wolf", 3)
	second := newTestRule(t, "wolf", 99)

	require.NoError(t, table.Register(first))
	err := table.Register(second)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateSpecies)
	got, _ := table.Get("wolf")
	assert.Same(t, first, got)
	assert.Equal(t, 3, got.RequiredTrust())
	assert.Equal(t, 1, table.Count())
}

func TestSpeciesTable_RegisterNil(t *testing.T) {
	assert.Error(t, NewSpeciesTable().Register(nil))
}

func TestSpeciesTable_AllSortedAndClear(t *testing.T) {
	table := NewSpeciesTable()
	for _, id := range []string{"wolf", "boar", "horse"} {
		require.NoError(t, table.Register(newTestRule(t, id, 3)))
	}

	var ids []string
	for _, r := range table.All() {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{"boar", "horse", "wolf"}, ids)

	table.Clear()
	assert.Equal(t, 0, table.Count())
	assert.Empty(t, table.All())
}

func TestSpeciesTable_ConcurrentReads(t *testing.T) {
	table := NewSpeciesTable()
	require.NoError(t, table.Register(newTestRule(t, "wolf", 3)))

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_, _ = table.Get("wolf")
				_ = table.Contains("bear")
				_ = table.All()
			}
		}()
	}
	wg.Wait()
}
