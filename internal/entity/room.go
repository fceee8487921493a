package entity

import (
	"sync"
	"time"
)

const MaxPlayers = 2

// Participant is an identity seated in a room with a permanently assigned
// symbol: X for the creator, O for the second joiner.
type Participant struct {
	Identity string `json:"identity"`
	Symbol   string `json:"symbol"`
}

// Room is a lobby-scoped container for up to two participants and one game
// session. All transitions on a room are serialized through its mutex, held
// by the coordinator for the whole lookup-validate-mutate-emit cycle.
// Different rooms carry no shared invariant and proceed in parallel.
type Room struct {
	mu sync.Mutex

	ID       string         `json:"id"`
	Owner    string         `json:"owner"`
	Players  []*Participant `json:"players"`
	Status   string         `json:"status"`
	Game     *Game          `json:"game,omitempty"`
	LastUsed time.Time      `json:"-"`
}

func NewRoom(id, owner string) *Room {
	return &Room{
		ID:       id,
		Owner:    owner,
		Players:  []*Participant{{Identity: owner, Symbol: PlayerX}},
		Status:   StatusWaiting,
		LastUsed: time.Now(),
	}
}

// Lock serializes one full state transition on the room.
func (that *Room) Lock() { that.mu.Lock() }

func (that *Room) Unlock() { that.mu.Unlock() }

// Touch marks the room as recently used; the registry janitor expires rooms
// whose last use is older than the configured TTL. Callers hold the room lock.
func (that *Room) Touch() {
	that.LastUsed = time.Now()
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

// Seat returns the participant seated with the given identity, or nil.
func (that *Room) Seat(identity string) *Participant {
	for _, player := range that.Players {
		if player.Identity == identity {
			return player
		}
	}

	return nil
}

// SeatBySymbol resolves the identity holding a symbol. The winner of a game
// is always resolved through this mapping, never from the move request's
// caller field.
func (that *Room) SeatBySymbol(symbol string) *Participant {
	for _, player := range that.Players {
		if player.Symbol == symbol {
			return player
		}
	}

	return nil
}

// Snapshot returns a deep copy for outbound events. Callers hold the room lock.
func (that *Room) Snapshot() *Room {
	players := make([]*Participant, 0, len(that.Players))
	for _, player := range that.Players {
		copied := *player
		players = append(players, &copied)
	}

	snapshot := &Room{
		ID:      that.ID,
		Owner:   that.Owner,
		Players: players,
		Status:  that.Status,
	}

	if that.Game != nil {
		snapshot.Game = that.Game.Snapshot()
	}

	return snapshot
}

// RoomSummary is the read-only listing shape for the lobby.
type RoomSummary struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Players int    `json:"players"`
}

func (that *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:      that.ID,
		Status:  that.Status,
		Players: len(that.Players),
	}
}
