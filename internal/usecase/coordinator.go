// Package usecase holds the session coordinator: the single entry point for
// inbound room and game events. Every operation validates against current
// room state, mutates it under the room lock, and decides what to broadcast.
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/triquilabs/triqui-backend/internal/apperror"
	"github.com/triquilabs/triqui-backend/internal/entity"
	"github.com/triquilabs/triqui-backend/internal/monitor"
	"github.com/triquilabs/triqui-backend/internal/pkg"
	"github.com/triquilabs/triqui-backend/internal/tictactoe"
)

// Canonical outbound event names, one per transition.
const (
	EventRoomCreated  = "room_created"
	EventRoomJoined   = "room_joined"
	EventGameStarted  = "game_started"
	EventMoveMade     = "move_made"
	EventGameEnded    = "game_ended"
	EventRoomsUpdated = "rooms_updated"
)

type roomRegistry interface {
	Create(identity string) *entity.Room
	Get(roomID string) (*entity.Room, error)
	FindByGameID(gameID string) (*entity.Room, error)
	Join(roomID, identity string) (*entity.Room, error)
	Remove(roomID, requester string) error
	Delete(roomID string)
	List() []entity.RoomSummary
}

// Broadcaster is the outbound gateway. The coordinator decides what to send
// and to whom; delivery mechanics belong to the transport. Room-scoped sends
// address the seated participants of the given snapshot.
type Broadcaster interface {
	ToClient(identity, event string, payload any)
	ToRoom(room *entity.Room, event string, payload any)
	ToAll(event string, payload any)
}

// statsRecorder is notified after a terminal result has been committed and
// broadcast. It is best-effort: its failure never reaches the players.
type statsRecorder interface {
	RecordResult(playerX, playerO, winner string)
}

type Coordinator struct {
	logger *slog.Logger

	registry    roomRegistry
	broadcaster Broadcaster
	stats       statsRecorder
	metrics     *monitor.Metrics
}

func NewCoordinator(logger *slog.Logger, registry roomRegistry, broadcaster Broadcaster, stats statsRecorder, metrics *monitor.Metrics) *Coordinator {
	return &Coordinator{
		logger: logger.With("component", "coordinator"),

		registry:    registry,
		broadcaster: broadcaster,
		stats:       stats,
		metrics:     metrics,
	}
}

// CreateRoom allocates a fresh room with the creator seated as X.
func (that *Coordinator) CreateRoom(_ context.Context, identity string) (*entity.Room, error) {
	if identity == "" {
		return nil, apperror.ErrEmptyIdentity
	}

	room := that.registry.Create(identity)

	room.Lock()
	snapshot := room.Snapshot()
	room.Unlock()

	that.broadcaster.ToClient(identity, EventRoomCreated, snapshot)
	that.broadcaster.ToAll(EventRoomsUpdated, that.registry.List())

	return snapshot, nil
}

// JoinRoom seats identity as O. Once the second seat is taken the game starts
// immediately, matching the lobby flow where a full room has nothing left to
// wait for.
func (that *Coordinator) JoinRoom(_ context.Context, roomID, identity string) (*entity.Room, error) {
	room, err := that.registry.Join(roomID, identity)
	if err != nil {
		return nil, err
	}

	room.Lock()
	started := false
	if room.IsWaiting() && room.IsFull() {
		that.startSession(room)
		started = true
	}
	snapshot := room.Snapshot()
	room.Unlock()

	that.broadcaster.ToClient(identity, EventRoomJoined, snapshot)
	if started {
		that.broadcaster.ToRoom(snapshot, EventGameStarted, snapshot)
	}
	that.broadcaster.ToAll(EventRoomsUpdated, that.registry.List())

	return snapshot, nil
}

// StartGame transitions a waiting room to playing. Starting a room that is
// already playing returns the current session unchanged.
func (that *Coordinator) StartGame(_ context.Context, roomID string) (*entity.Room, error) {
	room, err := that.registry.Get(roomID)
	if err != nil {
		return nil, err
	}

	room.Lock()

	if room.IsFinished() {
		room.Unlock()
		return nil, apperror.ErrGameFinished
	}

	if room.IsPlaying() {
		snapshot := room.Snapshot()
		room.Unlock()
		return snapshot, nil
	}

	if len(room.Players) < entity.MaxPlayers {
		room.Unlock()
		return nil, apperror.ErrNotEnoughPlayers
	}

	that.startSession(room)
	snapshot := room.Snapshot()
	room.Unlock()

	that.broadcaster.ToRoom(snapshot, EventGameStarted, snapshot)
	that.broadcaster.ToAll(EventRoomsUpdated, that.registry.List())

	return snapshot, nil
}

// MakeMove applies one move to the session named by gameID. The acting
// participant must be seated in the owning room and hold the symbol whose
// turn it is; the wire payload is never trusted for turn ownership.
func (that *Coordinator) MakeMove(_ context.Context, gameID, identity string, cell int) (*entity.Room, error) {
	room, err := that.registry.FindByGameID(gameID)
	if err != nil {
		return nil, err
	}

	room.Lock()

	game := room.Game
	if game == nil {
		room.Unlock()
		return nil, apperror.ErrGameIsNotStarted
	}

	seat := room.Seat(identity)
	if seat == nil {
		room.Unlock()
		return nil, apperror.ErrNotInRoom
	}

	if err = tictactoe.ApplyMove(game, seat.Symbol, cell); err != nil {
		room.Unlock()
		return nil, fmt.Errorf("invalid move: %w", err)
	}

	room.Touch()

	if !game.IsOver() {
		snapshot := room.Snapshot()
		room.Unlock()

		that.metrics.MovesTotal.Inc()
		that.broadcaster.ToRoom(snapshot, EventMoveMade, snapshot)

		return snapshot, nil
	}

	room.Status = entity.StatusFinished

	playerX := room.SeatBySymbol(entity.PlayerX)
	playerO := room.SeatBySymbol(entity.PlayerO)

	// The winner is resolved from the seating map recorded at join time,
	// not from the caller of the winning move.
	winner := ""
	if !game.IsDraw() {
		winner = room.SeatBySymbol(game.Result).Identity
	}

	snapshot := room.Snapshot()
	room.Unlock()

	that.metrics.MovesTotal.Inc()
	that.metrics.ObserveFinishedGame(game.IsDraw())

	that.broadcaster.ToRoom(snapshot, EventGameEnded, snapshot)
	that.stats.RecordResult(playerX.Identity, playerO.Identity, winner)

	// A finished room accepts no further interaction, so it is removed
	// right away rather than lingering until owner-initiated deletion.
	that.registry.Delete(room.ID)
	that.broadcaster.ToAll(EventRoomsUpdated, that.registry.List())

	that.logger.Info("game ended", "gameID", game.ID, "result", game.Result, "winner", winner)

	return snapshot, nil
}

// DeleteRoom removes a room on behalf of its owner.
func (that *Coordinator) DeleteRoom(_ context.Context, roomID, identity string) error {
	if err := that.registry.Remove(roomID, identity); err != nil {
		return err
	}

	that.broadcaster.ToAll(EventRoomsUpdated, that.registry.List())

	return nil
}

// ListRooms is the read-only lobby listing, safe to call from the REST side.
func (that *Coordinator) ListRooms() []entity.RoomSummary {
	return that.registry.List()
}

// startSession allocates a fresh session. Callers hold the room lock.
func (that *Coordinator) startSession(room *entity.Room) {
	room.Game = entity.NewGame(pkg.GenerateGameID(), room.ID)
	room.Status = entity.StatusPlaying
	room.Touch()

	that.logger.Info("game started", "roomID", room.ID, "gameID", room.Game.ID)
}
