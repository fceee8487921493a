package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/triquilabs/triqui-backend/internal/entity"
	"github.com/triquilabs/triqui-backend/internal/repository"
)

const (
	rankingLimit     = 5
	recentGamesLimit = 6
)

type Handlers interface {
	Ping(w http.ResponseWriter, r *http.Request)
	ListRooms(w http.ResponseWriter, r *http.Request)
	Ranking(w http.ResponseWriter, r *http.Request)
	PlayerStats(w http.ResponseWriter, r *http.Request)
	RecentGames(w http.ResponseWriter, r *http.Request)
}

type roomLister interface {
	ListRooms() []entity.RoomSummary
}

type statsReader interface {
	GetByIdentity(ctx context.Context, identity string) (*entity.PlayerStats, error)
	Ranking(ctx context.Context, limit int) ([]entity.PlayerStats, error)
}

type historyReader interface {
	Recent(ctx context.Context, limit int) ([]entity.GameRecord, error)
}

type restHandlers struct {
	logger  *slog.Logger
	rooms   roomLister
	stats   statsReader
	history historyReader
}

func NewHandlers(logger *slog.Logger, rooms roomLister, stats statsReader, history historyReader) Handlers {
	return &restHandlers{
		logger:  logger.With("component", "rest"),
		rooms:   rooms,
		stats:   stats,
		history: history,
	}
}

func (that *restHandlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *restHandlers) ListRooms(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, that.rooms.ListRooms())
}

func (that *restHandlers) Ranking(w http.ResponseWriter, r *http.Request) {
	ranking, err := that.stats.Ranking(r.Context(), rankingLimit)
	if err != nil {
		that.logger.Error("failed to load ranking", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if ranking == nil {
		ranking = []entity.PlayerStats{}
	}

	that.writeJSON(w, ranking)
}

func (that *restHandlers) PlayerStats(w http.ResponseWriter, r *http.Request) {
	identity := mux.Vars(r)["identity"]

	stats, err := that.stats.GetByIdentity(r.Context(), identity)
	if err != nil {
		if errors.Is(err, repository.ErrPlayerNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}

		that.logger.Error("failed to load player stats", "identity", identity, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, stats)
}

func (that *restHandlers) RecentGames(w http.ResponseWriter, r *http.Request) {
	records, err := that.history.Recent(r.Context(), recentGamesLimit)
	if err != nil {
		that.logger.Error("failed to load recent games", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []entity.GameRecord{}
	}

	that.writeJSON(w, records)
}

func (that *restHandlers) writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
