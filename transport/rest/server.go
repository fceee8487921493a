package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Start - starts the HTTP API and blocks until it fails or the context is
// canceled.
func Start(ctx context.Context, logger *slog.Logger, port string, api Handlers) error {
	router := mux.NewRouter()

	router.HandleFunc("/ping", api.Ping).Methods(http.MethodGet)
	router.HandleFunc("/rooms", api.ListRooms).Methods(http.MethodGet)
	router.HandleFunc("/stats/ranking", api.Ranking).Methods(http.MethodGet)
	router.HandleFunc("/stats/player/{identity}", api.PlayerStats).Methods(http.MethodGet)
	router.HandleFunc("/stats/recent", api.RecentGames).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet}),
	)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handlers.LoggingHandler(slogWriter{logger}, cors(router)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// slogWriter adapts the structured logger to the access-log writer the
// gorilla logging middleware expects.
type slogWriter struct {
	logger *slog.Logger
}

func (that slogWriter) Write(p []byte) (int, error) {
	that.logger.Debug("http request", "access_log", string(p))
	return len(p), nil
}
