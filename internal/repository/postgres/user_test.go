package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/campuschat-server/internal/model"
)

func TestNewUserRepository(t *testing.T) {
	db := &Connection{}
	repo := NewUserRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestSetColumns_CoverEverySet(t *testing.T) {
	for _, set := range model.UserSets {
		column, ok := setColumns[set]
		require.True(t, ok, "set %s has no column", set)
		assert.Equal(t, string(set), column)
	}
}

func TestUserRepository_UnknownSet(t *testing.T) {
	repo := NewUserRepository(&Connection{})

	err := repo.AddToSet(context.Background(), uuid.New(), model.UserSet("friends"), uuid.New())
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	err = repo.RemoveFromSet(context.Background(), uuid.New(), model.UserSet("friends"), uuid.New())
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestUUIDConversions(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	parsed, err := parseUUIDs(uuidStrings(ids))
	require.NoError(t, err)
	assert.Equal(t, ids, parsed)

	empty, err := parseUUIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = parseUUIDs([]string{"nope"})
	assert.Error(t, err)
}
