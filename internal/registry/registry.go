// Package registry owns the in-memory room table. It enforces occupancy and
// ownership rules and nothing else; turn logic lives with the coordinator and
// the board engine.
package registry

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/triquilabs/triqui-backend/internal/apperror"
	"github.com/triquilabs/triqui-backend/internal/entity"
	"github.com/triquilabs/triqui-backend/internal/pkg"
)

const janitorInterval = time.Minute

// Registry maps room id to room state. The map itself is guarded by an
// RWMutex; each room carries its own lock for transition serialization.
type Registry struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]*entity.Room

	idleTTL time.Duration
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a registry. With a positive idleTTL a janitor goroutine expires
// rooms that saw no accepted transition for that long; Close stops it.
func New(logger *slog.Logger, idleTTL time.Duration) *Registry {
	that := &Registry{
		logger:  logger.With("component", "registry"),
		rooms:   make(map[string]*entity.Room),
		idleTTL: idleTTL,
		stopCh:  make(chan struct{}),
	}

	if idleTTL > 0 {
		that.wg.Add(1)
		go that.janitor()
	}

	return that
}

// Create allocates a fresh room owned by identity, with the creator seated
// as X. It always succeeds.
func (that *Registry) Create(identity string) *entity.Room {
	room := entity.NewRoom(pkg.GenerateRoomID(), identity)

	that.mu.Lock()
	that.rooms[room.ID] = room
	that.mu.Unlock()

	that.logger.Info("room created", "roomID", room.ID, "owner", identity)

	return room
}

func (that *Registry) Get(roomID string) (*entity.Room, error) {
	that.mu.RLock()
	room, ok := that.rooms[roomID]
	that.mu.RUnlock()

	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return room, nil
}

// FindByGameID resolves the room currently owning the session with the given
// id. Move requests name the session, not the room.
func (that *Registry) FindByGameID(gameID string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, room := range that.rooms {
		room.Lock()
		owns := room.Game != nil && room.Game.ID == gameID
		room.Unlock()

		if owns {
			return room, nil
		}
	}

	return nil, apperror.ErrGameNotFound
}

// Join seats identity as O. The room lock is held so two concurrent joins
// cannot both pass the occupancy check.
func (that *Registry) Join(roomID, identity string) (*entity.Room, error) {
	room, err := that.Get(roomID)
	if err != nil {
		return nil, err
	}

	room.Lock()
	defer room.Unlock()

	if room.Seat(identity) != nil {
		return nil, apperror.ErrAlreadyJoined
	}

	if room.IsFull() {
		return nil, apperror.ErrRoomFull
	}

	room.Players = append(room.Players, &entity.Participant{Identity: identity, Symbol: entity.PlayerO})
	room.Touch()

	that.logger.Info("player joined room", "roomID", roomID, "identity", identity)

	return room, nil
}

// Remove deletes a room on behalf of its owner.
func (that *Registry) Remove(roomID, requester string) error {
	room, err := that.Get(roomID)
	if err != nil {
		return err
	}

	room.Lock()
	owner := room.Owner
	room.Unlock()

	if owner != requester {
		return apperror.ErrNotOwner
	}

	that.Delete(roomID)

	return nil
}

// Delete removes a room unconditionally. The coordinator uses it to clean up
// rooms whose game reached a terminal result.
func (that *Registry) Delete(roomID string) {
	that.mu.Lock()
	delete(that.rooms, roomID)
	that.mu.Unlock()

	that.logger.Info("room deleted", "roomID", roomID)
}

// List returns read-only summaries of all rooms, ordered by id for stable
// lobby rendering.
func (that *Registry) List() []entity.RoomSummary {
	that.mu.RLock()
	summaries := make([]entity.RoomSummary, 0, len(that.rooms))
	for _, room := range that.rooms {
		room.Lock()
		summaries = append(summaries, room.Summary())
		room.Unlock()
	}
	that.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	return summaries
}

// Count reports the number of live rooms.
func (that *Registry) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// Close stops the janitor goroutine.
func (that *Registry) Close() {
	close(that.stopCh)
	that.wg.Wait()
}

func (that *Registry) janitor() {
	defer that.wg.Done()

	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-that.stopCh:
			return
		case <-ticker.C:
			that.expireIdleRooms()
		}
	}
}

func (that *Registry) expireIdleRooms() {
	deadline := time.Now().Add(-that.idleTTL)

	that.mu.Lock()
	defer that.mu.Unlock()

	for id, room := range that.rooms {
		room.Lock()
		idle := room.LastUsed.Before(deadline)
		room.Unlock()

		if idle {
			delete(that.rooms, id)
			that.logger.Info("idle room expired", "roomID", id)
		}
	}
}
