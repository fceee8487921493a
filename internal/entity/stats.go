package entity

import "time"

// PlayerStats is the aggregate record kept per identity. Losses are derived,
// not stored.
type PlayerStats struct {
	Identity string  `json:"identity"`
	Played   int64   `json:"played"`
	Wins     int64   `json:"wins"`
	Draws    int64   `json:"draws"`
	WinRate  float64 `json:"win_rate"`
}

func (that *PlayerStats) Losses() int64 {
	return that.Played - that.Wins - that.Draws
}

// GameRecord is one finished game in the history. Winner is empty for a draw.
type GameRecord struct {
	ID       int64     `json:"id"`
	PlayerX  string    `json:"player_x"`
	PlayerO  string    `json:"player_o"`
	Winner   string    `json:"winner,omitempty"`
	PlayedAt time.Time `json:"played_at"`
}
