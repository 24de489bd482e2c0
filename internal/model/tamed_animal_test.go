package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTamedAnimal(t *testing.T) {
	id, owner := uuid.New(), uuid.New()
	home := NewLocation(1, 64, -3)

	a := NewTamedAnimal(id, owner, "Steve", "wolf", home, 24, 1_700_000_000_000)

	assert.Equal(t, id, a.ID)
	assert.Equal(t, owner, a.OwnerID)
	assert.Equal(t, "Steve", a.OwnerName)
	assert.Equal(t, ModeFollow, a.Mode)
	assert.Equal(t, home, a.Home)
	assert.Equal(t, 24.0, a.MaxFollowDistance)
	assert.Equal(t, int64(1_700_000_000_000), a.CreatedAt)
	assert.False(t, a.HasCustomName())
	assert.Equal(t, "wolf", a.DisplayName())
	assert.True(t, a.IsOwnedBy(owner))
	assert.False(t, a.IsOwnedBy(uuid.New()))
}

func TestTamedAnimal_CopyOnWrite(t *testing.T) {
	a := NewTamedAnimal(uuid.New(), uuid.New(), "Steve", "wolf", Location{}, 24, 0)

	stay := a.WithMode(ModeStay).WithHome(NewLocation(5, 6, 7))
	named := a.WithCustomName("Rex")
	newOwner := uuid.New()
	moved := a.WithOwner(newOwner, "Alex")

	assert.Equal(t, ModeFollow, a.Mode, "original mode changed")
	assert.Equal(t, Location{}, a.Home, "original home changed")
	assert.Equal(t, ModeStay, stay.Mode)
	assert.Equal(t, NewLocation(5, 6, 7), stay.Home)
	assert.Equal(t, "Rex", named.DisplayName())
	assert.Equal(t, newOwner, moved.OwnerID)
	assert.Equal(t, "Alex", moved.OwnerName)
}

func TestBehaviorMode(t *testing.T) {
	assert.Equal(t, ModeStay, ModeFollow.Toggle())
	assert.Equal(t, ModeFollow, ModeStay.Toggle())

	m, err := ParseBehaviorMode("stay")
	require.NoError(t, err)
	assert.Equal(t, ModeStay, m)

	_, err = ParseBehaviorMode("sit")
	assert.Error(t, err)
}
