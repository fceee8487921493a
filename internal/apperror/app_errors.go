package apperror

import "errors"

// Not found: the request names a room or game that does not exist.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrGameNotFound = errors.New("game not found")
)

// Precondition failed: the room or game exists but the request is not valid
// against its current state. These reject the request and never mutate state.
var (
	ErrRoomFull         = errors.New("room is full")
	ErrAlreadyJoined    = errors.New("player is already in the room")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrNotOwner         = errors.New("only the room owner can do that")
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrNotInRoom        = errors.New("player is not seated in the room")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrEmptyIdentity    = errors.New("player identity is empty")
)
