package pkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triquilabs/triqui-backend/internal/apperror"
)

func TestNormalizeIdentity(t *testing.T) {
	t.Run("Trims and lowercases", func(t *testing.T) {
		identity, err := NormalizeIdentity("  Alice ")

		require.NoError(t, err)
		assert.Equal(t, "alice", identity)
	})

	t.Run("Blank input is rejected", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "\t\n"} {
			_, err := NormalizeIdentity(raw)
			assert.ErrorIs(t, err, apperror.ErrEmptyIdentity)
		}
	})
}

func TestGenerateIDs(t *testing.T) {
	roomID := GenerateRoomID()
	gameID := GenerateGameID()

	assert.True(t, strings.HasPrefix(roomID, "r_"))
	assert.True(t, strings.HasPrefix(gameID, "g_"))
	assert.NotEqual(t, GenerateRoomID(), roomID)
}
