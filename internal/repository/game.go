package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/triquilabs/triqui-backend/internal/entity"
)

type GameHistoryRepository interface {
	Insert(ctx context.Context, record *entity.GameRecord) error
	Recent(ctx context.Context, limit int) ([]entity.GameRecord, error)
}

type dbGameHistory struct {
	conn *sql.DB
}

func NewGameHistoryRepository(conn *sql.DB) GameHistoryRepository {
	return &dbGameHistory{
		conn: conn,
	}
}

func (that *dbGameHistory) Insert(ctx context.Context, record *entity.GameRecord) error {
	query := `INSERT INTO games (player_x, player_o, winner, played_at) VALUES (?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query, record.PlayerX, record.PlayerO, record.Winner, record.PlayedAt)
	if err != nil {
		return fmt.Errorf("can't save game record: %w", err)
	}

	return nil
}

func (that *dbGameHistory) Recent(ctx context.Context, limit int) ([]entity.GameRecord, error) {
	query := `SELECT id, player_x, player_o, winner, played_at FROM games ORDER BY played_at DESC, id DESC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't query recent games: %w", err)
	}
	defer rows.Close()

	var records []entity.GameRecord
	for rows.Next() {
		var record entity.GameRecord
		if err = rows.Scan(&record.ID, &record.PlayerX, &record.PlayerO, &record.Winner, &record.PlayedAt); err != nil {
			return nil, fmt.Errorf("can't scan game record: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read game records: %w", err)
	}

	return records, nil
}
