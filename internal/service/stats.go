// Package service holds the stats recorder: an asynchronous, best-effort
// bridge between the coordinator and the persistence collaborators.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/triquilabs/triqui-backend/internal/entity"
)

const (
	defaultQueueSize = 256
	writeTimeout     = 5 * time.Second
)

type playerStatsRepo interface {
	RecordWin(ctx context.Context, winner, loser string) error
	RecordDraw(ctx context.Context, playerX, playerO string) error
}

type gameHistoryRepo interface {
	Insert(ctx context.Context, record *entity.GameRecord) error
}

type gameResult struct {
	playerX  string
	playerO  string
	winner   string
	playedAt time.Time
}

// StatsRecorder drains finished-game results from a bounded queue into the
// stats stores. Enqueueing never blocks a game-state transition: when the
// queue is full the result is dropped and logged.
type StatsRecorder struct {
	logger *slog.Logger

	players playerStatsRepo
	history gameHistoryRepo

	queue chan gameResult
	wg    sync.WaitGroup
}

func NewStatsRecorder(logger *slog.Logger, players playerStatsRepo, history gameHistoryRepo) *StatsRecorder {
	that := &StatsRecorder{
		logger: logger.With("component", "stats"),

		players: players,
		history: history,

		queue: make(chan gameResult, defaultQueueSize),
	}

	that.wg.Add(1)
	go that.drain()

	return that
}

// RecordResult enqueues one finished game. winner is empty for a draw.
func (that *StatsRecorder) RecordResult(playerX, playerO, winner string) {
	result := gameResult{
		playerX:  playerX,
		playerO:  playerO,
		winner:   winner,
		playedAt: time.Now(),
	}

	select {
	case that.queue <- result:
	default:
		that.logger.Warn("stats queue full, dropping result", "playerX", playerX, "playerO", playerO)
	}
}

// Close flushes the queue and stops the worker.
func (that *StatsRecorder) Close() {
	close(that.queue)
	that.wg.Wait()
}

func (that *StatsRecorder) drain() {
	defer that.wg.Done()

	for result := range that.queue {
		that.persist(result)
	}
}

func (that *StatsRecorder) persist(result gameResult) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	record := &entity.GameRecord{
		PlayerX:  result.playerX,
		PlayerO:  result.playerO,
		Winner:   result.winner,
		PlayedAt: result.playedAt,
	}

	if err := that.history.Insert(ctx, record); err != nil {
		that.logger.Error("failed to save game record", "error", err)
	}

	var err error
	switch result.winner {
	case "":
		err = that.players.RecordDraw(ctx, result.playerX, result.playerO)
	case result.playerX:
		err = that.players.RecordWin(ctx, result.playerX, result.playerO)
	default:
		err = that.players.RecordWin(ctx, result.playerO, result.playerX)
	}

	if err != nil {
		that.logger.Error("failed to update player stats", "error", err)
	}
}
