package entity

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"

	PlayerX = "X"
	PlayerO = "O"

	ResultDraw = "draw"

	EmptyCell = ""
)

// Game is the session of one match: the board, whose turn it is and the
// result once the match is over. A game is owned by exactly one room and is
// never reused; a rematch needs a new room.
type Game struct {
	ID     string    `json:"id"`
	RoomID string    `json:"room_id"`
	Board  [9]string `json:"board"`
	Turn   string    `json:"turn"`
	Result string    `json:"result,omitempty"`
}

// NewGame - allocates a fresh session with an empty board and X to move.
func NewGame(id, roomID string) *Game {
	return &Game{
		ID:     id,
		RoomID: roomID,
		Turn:   PlayerX,
	}
}

// IsOver reports whether a terminal result has been set. Once set it is
// never cleared.
func (that *Game) IsOver() bool {
	return that.Result != ""
}

func (that *Game) IsDraw() bool {
	return that.Result == ResultDraw
}

// Snapshot returns a copy for outbound events, so the broadcast gateway
// never shares the mutable session with connection goroutines.
func (that *Game) Snapshot() *Game {
	copied := *that
	return &copied
}
