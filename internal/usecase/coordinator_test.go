package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triquilabs/triqui-backend/internal/apperror"
	"github.com/triquilabs/triqui-backend/internal/entity"
	"github.com/triquilabs/triqui-backend/internal/monitor"
	"github.com/triquilabs/triqui-backend/internal/registry"
)

type sentEvent struct {
	scope  string // "client", "room" or "all"
	target string
	event  string
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []sentEvent
}

func (that *fakeBroadcaster) ToClient(identity, event string, _ any) {
	that.record(sentEvent{scope: "client", target: identity, event: event})
}

func (that *fakeBroadcaster) ToRoom(room *entity.Room, event string, _ any) {
	that.record(sentEvent{scope: "room", target: room.ID, event: event})
}

func (that *fakeBroadcaster) ToAll(event string, _ any) {
	that.record(sentEvent{scope: "all", event: event})
}

func (that *fakeBroadcaster) record(event sentEvent) {
	that.mu.Lock()
	that.events = append(that.events, event)
	that.mu.Unlock()
}

func (that *fakeBroadcaster) named(event string) []sentEvent {
	that.mu.Lock()
	defer that.mu.Unlock()

	var matched []sentEvent
	for _, sent := range that.events {
		if sent.event == event {
			matched = append(matched, sent)
		}
	}

	return matched
}

type fakeStats struct {
	mu      sync.Mutex
	playerX string
	playerO string
	winner  string
	calls   int
}

func (that *fakeStats) RecordResult(playerX, playerO, winner string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.playerX = playerX
	that.playerO = playerO
	that.winner = winner
	that.calls++
}

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeBroadcaster, *fakeStats) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg := registry.New(logger, 0)
	t.Cleanup(reg.Close)

	metrics := monitor.New(prometheus.NewRegistry(), "triqui_test", func() float64 {
		return float64(reg.Count())
	})

	broadcaster := &fakeBroadcaster{}
	stats := &fakeStats{}

	return NewCoordinator(logger, reg, broadcaster, stats, metrics), broadcaster, stats
}

// playMoves seats alice and bob in a fresh room and applies the given moves,
// alternating between them starting with alice (X).
func playMoves(t *testing.T, coordinator *Coordinator, cells []int) (*entity.Room, *entity.Room) {
	t.Helper()

	ctx := context.Background()

	created, err := coordinator.CreateRoom(ctx, "alice")
	require.NoError(t, err)

	joined, err := coordinator.JoinRoom(ctx, created.ID, "bob")
	require.NoError(t, err)
	require.NotNil(t, joined.Game)

	var last *entity.Room
	identities := []string{"alice", "bob"}
	for i, cell := range cells {
		last, err = coordinator.MakeMove(ctx, joined.Game.ID, identities[i%2], cell)
		require.NoError(t, err)
	}

	return joined, last
}

func TestCoordinator_CreateRoom(t *testing.T) {
	// Scenario: alice creates a room
	coordinator, broadcaster, _ := newTestCoordinator(t)

	room, err := coordinator.CreateRoom(context.Background(), "alice")

	// Then: alice is X, the room is waiting with one seat taken
	require.NoError(t, err)
	assert.Equal(t, entity.StatusWaiting, room.Status)
	require.Len(t, room.Players, 1)
	assert.Equal(t, "alice", room.Players[0].Identity)
	assert.Equal(t, entity.PlayerX, room.Players[0].Symbol)

	// And: the creator got room_created, everyone got the registry update
	created := broadcaster.named(EventRoomCreated)
	require.Len(t, created, 1)
	assert.Equal(t, "client", created[0].scope)
	assert.Equal(t, "alice", created[0].target)
	assert.Len(t, broadcaster.named(EventRoomsUpdated), 1)

	// And: an empty identity is rejected
	_, err = coordinator.CreateRoom(context.Background(), "")
	assert.ErrorIs(t, err, apperror.ErrEmptyIdentity)
}

func TestCoordinator_JoinRoom(t *testing.T) {
	t.Run("Second join seats O and starts the game", func(t *testing.T) {
		// Given: alice's waiting room
		coordinator, broadcaster, _ := newTestCoordinator(t)
		ctx := context.Background()

		room, err := coordinator.CreateRoom(ctx, "alice")
		require.NoError(t, err)

		// When: bob joins
		joined, err := coordinator.JoinRoom(ctx, room.ID, "bob")

		// Then: bob is O, the session started with an empty board and X to move
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, joined.Seat("bob").Symbol)
		assert.Equal(t, entity.StatusPlaying, joined.Status)
		require.NotNil(t, joined.Game)
		assert.Equal(t, [9]string{}, joined.Game.Board)
		assert.Equal(t, entity.PlayerX, joined.Game.Turn)

		// And: the joiner was acked and the room heard game_started
		require.Len(t, broadcaster.named(EventRoomJoined), 1)
		started := broadcaster.named(EventGameStarted)
		require.Len(t, started, 1)
		assert.Equal(t, "room", started[0].scope)
	})

	t.Run("Third join is rejected with RoomFull", func(t *testing.T) {
		// Given: a full room
		coordinator, _, _ := newTestCoordinator(t)
		ctx := context.Background()

		room, err := coordinator.CreateRoom(ctx, "alice")
		require.NoError(t, err)
		_, err = coordinator.JoinRoom(ctx, room.ID, "bob")
		require.NoError(t, err)

		// When: carol joins
		_, err = coordinator.JoinRoom(ctx, room.ID, "carol")

		// Then: the join is rejected
		assert.ErrorIs(t, err, apperror.ErrRoomFull)
	})

	t.Run("Joining an unknown room is rejected", func(t *testing.T) {
		coordinator, _, _ := newTestCoordinator(t)

		_, err := coordinator.JoinRoom(context.Background(), "nope", "bob")

		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestCoordinator_StartGame(t *testing.T) {
	t.Run("Start without a second player is rejected", func(t *testing.T) {
		// Given: a waiting room with one seat taken
		coordinator, _, _ := newTestCoordinator(t)
		ctx := context.Background()

		room, err := coordinator.CreateRoom(ctx, "alice")
		require.NoError(t, err)

		// When: the game is started
		_, err = coordinator.StartGame(ctx, room.ID)

		// Then: the start is rejected
		assert.ErrorIs(t, err, apperror.ErrNotEnoughPlayers)
	})

	t.Run("Start on a playing room returns the current session", func(t *testing.T) {
		// Given: a room already playing
		coordinator, _, _ := newTestCoordinator(t)
		ctx := context.Background()

		room, err := coordinator.CreateRoom(ctx, "alice")
		require.NoError(t, err)
		joined, err := coordinator.JoinRoom(ctx, room.ID, "bob")
		require.NoError(t, err)

		// When: start is requested again
		started, err := coordinator.StartGame(ctx, room.ID)

		// Then: the existing session is returned unchanged
		require.NoError(t, err)
		assert.Equal(t, joined.Game.ID, started.Game.ID)
	})

	t.Run("Start on an unknown room is rejected", func(t *testing.T) {
		coordinator, _, _ := newTestCoordinator(t)

		_, err := coordinator.StartGame(context.Background(), "nope")

		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestCoordinator_MakeMove(t *testing.T) {
	t.Run("Accepted move broadcasts move_made to the room", func(t *testing.T) {
		// Given: a playing room
		coordinator, broadcaster, _ := newTestCoordinator(t)

		// When: X plays one non-terminal move
		_, last := playMoves(t, coordinator, []int{0})

		// Then: the board advanced and the room heard move_made
		assert.Equal(t, entity.PlayerX, last.Game.Board[0])
		assert.Equal(t, entity.PlayerO, last.Game.Turn)
		moves := broadcaster.named(EventMoveMade)
		require.Len(t, moves, 1)
		assert.Equal(t, "room", moves[0].scope)
	})

	t.Run("Move out of turn is rejected and mutates nothing", func(t *testing.T) {
		// Given: a playing room with O to move after X played
		coordinator, broadcaster, _ := newTestCoordinator(t)
		joined, _ := playMoves(t, coordinator, []int{0})

		// When: alice (X) moves again while turn = O
		_, err := coordinator.MakeMove(context.Background(), joined.Game.ID, "alice", 1)

		// Then: the move is rejected with NotYourTurn and the board kept one mark
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Len(t, broadcaster.named(EventMoveMade), 1)

		room, err := coordinator.registry.FindByGameID(joined.Game.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.EmptyCell, room.Game.Board[1])
	})

	t.Run("Identity not seated in the room is rejected", func(t *testing.T) {
		// Given: a playing room
		coordinator, _, _ := newTestCoordinator(t)
		joined, _ := playMoves(t, coordinator, nil)

		// When: carol submits a move for the game
		_, err := coordinator.MakeMove(context.Background(), joined.Game.ID, "carol", 0)

		// Then: the move is rejected
		assert.ErrorIs(t, err, apperror.ErrNotInRoom)
	})

	t.Run("Move on an unknown game is rejected", func(t *testing.T) {
		coordinator, _, _ := newTestCoordinator(t)

		_, err := coordinator.MakeMove(context.Background(), "g999", "alice", 0)

		assert.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Winning move finishes the game and cleans up the room", func(t *testing.T) {
		// Given/When: alternating moves give X the left column
		coordinator, broadcaster, stats := newTestCoordinator(t)
		joined, last := playMoves(t, coordinator, []int{0, 1, 3, 4, 6})

		// Then: the session ended with X as the result
		assert.Equal(t, entity.StatusFinished, last.Status)
		assert.Equal(t, entity.PlayerX, last.Game.Result)

		// And: the room heard game_ended and was removed from the registry
		ended := broadcaster.named(EventGameEnded)
		require.Len(t, ended, 1)
		assert.Equal(t, "room", ended[0].scope)
		_, err := coordinator.registry.Get(joined.ID)
		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)

		// And: the winner was resolved from the seating map
		assert.Equal(t, 1, stats.calls)
		assert.Equal(t, "alice", stats.playerX)
		assert.Equal(t, "bob", stats.playerO)
		assert.Equal(t, "alice", stats.winner)

		// And: no further move is accepted for the dead session
		_, err = coordinator.MakeMove(context.Background(), joined.Game.ID, "bob", 8)
		assert.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Draw is recorded without a winner", func(t *testing.T) {
		// Given/When: a full board with no line
		coordinator, broadcaster, stats := newTestCoordinator(t)
		_, last := playMoves(t, coordinator, []int{0, 4, 8, 3, 5, 2, 6, 7, 1})

		// Then: the result is a draw and neither player is credited a win
		assert.True(t, last.Game.IsDraw())
		require.Len(t, broadcaster.named(EventGameEnded), 1)
		assert.Equal(t, 1, stats.calls)
		assert.Equal(t, "", stats.winner)
	})
}

func TestCoordinator_DeleteRoom(t *testing.T) {
	t.Run("Owner deletes, everyone hears rooms_updated", func(t *testing.T) {
		// Given: alice's room
		coordinator, broadcaster, _ := newTestCoordinator(t)
		ctx := context.Background()

		room, err := coordinator.CreateRoom(ctx, "alice")
		require.NoError(t, err)

		// When: alice deletes it
		err = coordinator.DeleteRoom(ctx, room.ID, "alice")

		// Then: the room is gone and the registry change was broadcast
		require.NoError(t, err)
		assert.Empty(t, coordinator.ListRooms())
		assert.GreaterOrEqual(t, len(broadcaster.named(EventRoomsUpdated)), 2)
	})

	t.Run("Non-owner is rejected", func(t *testing.T) {
		// Given: alice's room with bob seated
		coordinator, _, _ := newTestCoordinator(t)
		ctx := context.Background()

		room, err := coordinator.CreateRoom(ctx, "alice")
		require.NoError(t, err)
		_, err = coordinator.JoinRoom(ctx, room.ID, "bob")
		require.NoError(t, err)

		// When: bob deletes it
		err = coordinator.DeleteRoom(ctx, room.ID, "bob")

		// Then: the deletion is rejected and the room survives
		assert.ErrorIs(t, err, apperror.ErrNotOwner)
		assert.Len(t, coordinator.ListRooms(), 1)
	})
}

func TestCoordinator_ListRooms(t *testing.T) {
	// Given: one waiting and one playing room
	coordinator, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	waiting, err := coordinator.CreateRoom(ctx, "alice")
	require.NoError(t, err)

	playing, err := coordinator.CreateRoom(ctx, "carol")
	require.NoError(t, err)
	_, err = coordinator.JoinRoom(ctx, playing.ID, "dave")
	require.NoError(t, err)

	// When: listing
	summaries := coordinator.ListRooms()

	// Then: both rooms appear with status and player count
	require.Len(t, summaries, 2)
	byID := make(map[string]entity.RoomSummary, len(summaries))
	for _, summary := range summaries {
		byID[summary.ID] = summary
	}
	assert.Equal(t, entity.StatusWaiting, byID[waiting.ID].Status)
	assert.Equal(t, 1, byID[waiting.ID].Players)
	assert.Equal(t, entity.StatusPlaying, byID[playing.ID].Status)
	assert.Equal(t, 2, byID[playing.ID].Players)
}
