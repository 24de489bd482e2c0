package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/taming/internal/model"
)

func openTestSQLite(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := openTestSQLite(t, filepath.Join(t.TempDir(), "taming.db"))
	runStoreContract(t, store)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "taming.db")
	a := model.NewTamedAnimal(uuid.New(), uuid.New(), "Alex", "boar", model.NewLocation(3, 4, 5), 12, 42).
		WithCustomName("Pumba")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, a))
	require.NoError(t, first.Close())

	// migrations are idempotent
	second := openTestSQLite(t, path)
	all, err := second.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.TamedAnimal{a}, all)
}

func TestOpenSQLite_BlankPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "  ")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseNil(t *testing.T) {
	var s *SQLiteStore
	assert.NoError(t, s.Close())
}
