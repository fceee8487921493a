package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/triquilabs/triqui-backend/internal/entity"
)

const (
	playersKey     = "stats:players"
	statsKeyPrefix = "stats:player:"

	fieldPlayed = "played"
	fieldWins   = "wins"
	fieldDraws  = "draws"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerStatsRepository interface {
	RecordWin(ctx context.Context, winner, loser string) error
	RecordDraw(ctx context.Context, playerX, playerO string) error
	GetByIdentity(ctx context.Context, identity string) (*entity.PlayerStats, error)
	Ranking(ctx context.Context, limit int) ([]entity.PlayerStats, error)
}

type dbPlayerStats struct {
	client *redis.Client
}

func NewPlayerStatsRepository(client *redis.Client) PlayerStatsRepository {
	return &dbPlayerStats{
		client: client,
	}
}

func (that *dbPlayerStats) RecordWin(ctx context.Context, winner, loser string) error {
	pipe := that.client.TxPipeline()

	pipe.SAdd(ctx, playersKey, winner, loser)
	pipe.HIncrBy(ctx, statsKeyPrefix+winner, fieldPlayed, 1)
	pipe.HIncrBy(ctx, statsKeyPrefix+winner, fieldWins, 1)
	pipe.HIncrBy(ctx, statsKeyPrefix+loser, fieldPlayed, 1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record win: %w", err)
	}

	return nil
}

func (that *dbPlayerStats) RecordDraw(ctx context.Context, playerX, playerO string) error {
	pipe := that.client.TxPipeline()

	pipe.SAdd(ctx, playersKey, playerX, playerO)
	for _, identity := range []string{playerX, playerO} {
		pipe.HIncrBy(ctx, statsKeyPrefix+identity, fieldPlayed, 1)
		pipe.HIncrBy(ctx, statsKeyPrefix+identity, fieldDraws, 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record draw: %w", err)
	}

	return nil
}

func (that *dbPlayerStats) GetByIdentity(ctx context.Context, identity string) (*entity.PlayerStats, error) {
	fields, err := that.client.HGetAll(ctx, statsKeyPrefix+identity).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}

	if len(fields) == 0 {
		return nil, ErrPlayerNotFound
	}

	return statsFromFields(identity, fields), nil
}

// Ranking returns the top players by win rate, games played breaking ties.
func (that *dbPlayerStats) Ranking(ctx context.Context, limit int) ([]entity.PlayerStats, error) {
	identities, err := that.client.SMembers(ctx, playersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	ranking := make([]entity.PlayerStats, 0, len(identities))
	for _, identity := range identities {
		fields, err := that.client.HGetAll(ctx, statsKeyPrefix+identity).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to get player stats: %w", err)
		}

		if len(fields) == 0 {
			continue
		}

		ranking = append(ranking, *statsFromFields(identity, fields))
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].WinRate != ranking[j].WinRate {
			return ranking[i].WinRate > ranking[j].WinRate
		}
		return ranking[i].Played > ranking[j].Played
	})

	if limit > 0 && len(ranking) > limit {
		ranking = ranking[:limit]
	}

	return ranking, nil
}

func statsFromFields(identity string, fields map[string]string) *entity.PlayerStats {
	stats := &entity.PlayerStats{
		Identity: identity,
		Played:   parseField(fields, fieldPlayed),
		Wins:     parseField(fields, fieldWins),
		Draws:    parseField(fields, fieldDraws),
	}

	if stats.Played > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.Played)
	}

	return stats
}

func parseField(fields map[string]string, name string) int64 {
	value, err := strconv.ParseInt(fields[name], 10, 64)
	if err != nil {
		return 0
	}

	return value
}
