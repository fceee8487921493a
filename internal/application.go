package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/triquilabs/triqui-backend/internal/config"
	"github.com/triquilabs/triqui-backend/internal/monitor"
	"github.com/triquilabs/triqui-backend/internal/registry"
	"github.com/triquilabs/triqui-backend/internal/repository"
	"github.com/triquilabs/triqui-backend/internal/repository/storage"
	"github.com/triquilabs/triqui-backend/internal/service"
	"github.com/triquilabs/triqui-backend/internal/usecase"
	"github.com/triquilabs/triqui-backend/transport/rest"
	"github.com/triquilabs/triqui-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	roomRegistry := registry.New(logger, conf.RoomIdleTTL)
	defer roomRegistry.Close()

	metrics := monitor.New(prometheus.DefaultRegisterer, "triqui", func() float64 {
		return float64(roomRegistry.Count())
	})

	playerStatsRepo := repository.NewPlayerStatsRepository(redisStorage.Connection)
	gameHistoryRepo := repository.NewGameHistoryRepository(sqliteStorage.Connection)

	statsRecorder := service.NewStatsRecorder(logger, playerStatsRepo, gameHistoryRepo)
	defer statsRecorder.Close()

	hub := websocket.NewHub(logger)
	coordinator := usecase.NewCoordinator(logger, roomRegistry, hub, statsRecorder, metrics)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		api := rest.NewHandlers(logger, coordinator, playerStatsRepo, gameHistoryRepo)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, api); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run WebSocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, coordinator, hub, metrics)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
