package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triquilabs/triqui-backend/testing/suite"
)

func TestPlayerStatsRepository(t *testing.T) {
	ctx, testSuite := suite.New(t)
	repo := NewPlayerStatsRepository(testSuite.Storage)

	t.Run("RecordWin updates both sides", func(t *testing.T) {
		// Given: a clean store
		require.NoError(t, testSuite.Storage.FlushDB(ctx).Err())

		// When: alice beats bob
		require.NoError(t, repo.RecordWin(ctx, "alice", "bob"))

		// Then: alice has one win in one game, bob one winless game
		winner, err := repo.GetByIdentity(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), winner.Played)
		assert.Equal(t, int64(1), winner.Wins)
		assert.Equal(t, float64(1), winner.WinRate)

		loser, err := repo.GetByIdentity(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(1), loser.Played)
		assert.Equal(t, int64(0), loser.Wins)
		assert.Equal(t, float64(0), loser.WinRate)
	})

	t.Run("RecordDraw updates both sides without a win", func(t *testing.T) {
		// Given: a clean store
		require.NoError(t, testSuite.Storage.FlushDB(ctx).Err())

		// When: alice and bob draw
		require.NoError(t, repo.RecordDraw(ctx, "alice", "bob"))

		// Then: both played one game, drew it, and won nothing
		for _, identity := range []string{"alice", "bob"} {
			stats, err := repo.GetByIdentity(ctx, identity)
			require.NoError(t, err)
			assert.Equal(t, int64(1), stats.Played)
			assert.Equal(t, int64(1), stats.Draws)
			assert.Equal(t, int64(0), stats.Wins)
		}
	})

	t.Run("GetByIdentity on an unknown player", func(t *testing.T) {
		require.NoError(t, testSuite.Storage.FlushDB(ctx).Err())

		_, err := repo.GetByIdentity(ctx, "ghost")

		assert.ErrorIs(t, err, ErrPlayerNotFound)
	})

	t.Run("Ranking orders by win rate then games played", func(t *testing.T) {
		// Given: alice 2/2, bob 1/3 (one draw), carol 0/2
		require.NoError(t, testSuite.Storage.FlushDB(ctx).Err())

		require.NoError(t, repo.RecordWin(ctx, "alice", "carol"))
		require.NoError(t, repo.RecordWin(ctx, "alice", "bob"))
		require.NoError(t, repo.RecordWin(ctx, "bob", "carol"))
		require.NoError(t, repo.RecordDraw(ctx, "bob", "dave"))

		// When: ranking everyone
		ranking, err := repo.Ranking(ctx, 10)

		// Then: ordered alice (1.0), bob (0.33), carol/dave (0.0)
		require.NoError(t, err)
		require.Len(t, ranking, 4)
		assert.Equal(t, "alice", ranking[0].Identity)
		assert.Equal(t, "bob", ranking[1].Identity)

		// And: at equal win rate the busier player ranks first
		assert.Equal(t, "carol", ranking[2].Identity)
		assert.Equal(t, "dave", ranking[3].Identity)
	})

	t.Run("Ranking honors the limit", func(t *testing.T) {
		require.NoError(t, testSuite.Storage.FlushDB(ctx).Err())

		require.NoError(t, repo.RecordWin(ctx, "alice", "bob"))
		require.NoError(t, repo.RecordWin(ctx, "carol", "dave"))

		ranking, err := repo.Ranking(ctx, 2)

		require.NoError(t, err)
		assert.Len(t, ranking, 2)
	})
}
