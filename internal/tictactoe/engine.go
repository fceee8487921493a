// Package tictactoe holds the board engine: pure evaluation of a 3x3 grid
// plus move application against a session. No I/O, no locking.
package tictactoe

import (
	"fmt"

	"github.com/triquilabs/triqui-backend/internal/apperror"
	"github.com/triquilabs/triqui-backend/internal/entity"
)

// The 8 fixed lines of the grid: 3 rows, 3 columns, 2 diagonals.
var winLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate returns the winning symbol if any line holds three identical
// non-empty cells, entity.ResultDraw if the board is full without a line,
// and the empty string while the game is still open.
func Evaluate(board [9]string) string {
	for _, line := range winLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range board {
		if cell == entity.EmptyCell {
			return ""
		}
	}

	return entity.ResultDraw
}

// ApplyMove writes symbol into the given cell of the session, flips the turn
// and sets the terminal result when the move ends the game. A rejected move
// leaves the session untouched.
func ApplyMove(game *entity.Game, symbol string, cell int) error {
	if game.IsOver() {
		return apperror.ErrGameFinished
	}

	if err := validateMove(game, symbol, cell); err != nil {
		return err
	}

	game.Board[cell] = symbol
	game.Turn = toggleSymbol(symbol)

	if outcome := Evaluate(game.Board); outcome != "" {
		game.Result = outcome
	}

	return nil
}

func validateMove(game *entity.Game, symbol string, cell int) error {
	if cell < 0 || cell >= len(game.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if game.Turn != symbol {
		return apperror.ErrNotYourTurn
	}

	if game.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

func toggleSymbol(symbol string) string {
	if symbol == entity.PlayerX {
		return entity.PlayerO
	}

	return entity.PlayerX
}
