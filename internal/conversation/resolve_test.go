package conversation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/campuschat-server/internal/model"
)

func TestResolve(t *testing.T) {
	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	t.Run("joins sorted ids", func(t *testing.T) {
		id, err := Resolve(b, a)
		require.NoError(t, err)
		assert.Equal(t, model.ConversationID(a.String()+"_"+b.String()), id)
	})

	t.Run("rejects self", func(t *testing.T) {
		_, err := Resolve(a, a)
		assert.ErrorIs(t, err, model.ErrSelfConversation)
	})
}

func TestResolve_Commutative(t *testing.T) {
	for i := 0; i < 200; i++ {
		a, b := uuid.New(), uuid.New()

		ab, err := Resolve(a, b)
		require.NoError(t, err)
		ba, err := Resolve(b, a)
		require.NoError(t, err)

		assert.Equal(t, ab, ba)
	}
}

func TestResolve_DistinctPairs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	ab, err := Resolve(a, b)
	require.NoError(t, err)
	ac, err := Resolve(a, c)
	require.NoError(t, err)
	bc, err := Resolve(b, c)
	require.NoError(t, err)

	assert.NotEqual(t, ab, ac)
	assert.NotEqual(t, ab, bc)
	assert.NotEqual(t, ac, bc)
}

func TestParticipants(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	id, err := Resolve(a, b)
	require.NoError(t, err)

	first, second, err := Participants(id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, []uuid.UUID{first, second})

	tests := []struct {
		name string
		id   model.ConversationID
	}{
		{name: "no separator", id: "abc"},
		{name: "bad uuid", id: "abc_def"},
		{name: "self pair", id: model.ConversationID(a.String() + "_" + a.String())},
		{name: "unsorted", id: model.ConversationID(second.String() + "_" + first.String())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Participants(tt.id)
			assert.Error(t, err)
		})
	}
}

func TestPeer(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	id, err := Resolve(a, b)
	require.NoError(t, err)

	peer, err := Peer(id, a)
	require.NoError(t, err)
	assert.Equal(t, b, peer)

	peer, err = Peer(id, b)
	require.NoError(t, err)
	assert.Equal(t, a, peer)

	_, err = Peer(id, uuid.New())
	assert.ErrorIs(t, err, model.ErrForbidden)
}
