package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTamedAnimalRepository(t *testing.T) {
	pool := setupTestDB(t)
	runStoreContract(t, NewTamedAnimalRepository(pool))
}

func TestTamedAnimalRepository_BadMode(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	// the CHECK constraint keeps unknown modes out
	_, err := pool.Exec(ctx,
		`INSERT INTO tamed_animals (id, owner_id, species_id, mode, max_follow_distance, created_at)
		 VALUES ($1, $2, 'wolf', 'SIT', 24, 1)`, uuid.New(), uuid.New())
	require.Error(t, err)

	all, err := NewTamedAnimalRepository(pool).LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
