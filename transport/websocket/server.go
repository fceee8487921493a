package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/triquilabs/triqui-backend/internal/entity"
	"github.com/triquilabs/triqui-backend/internal/monitor"
)

type gameCoordinator interface {
	CreateRoom(ctx context.Context, identity string) (*entity.Room, error)
	JoinRoom(ctx context.Context, roomID, identity string) (*entity.Room, error)
	StartGame(ctx context.Context, roomID string) (*entity.Room, error)
	MakeMove(ctx context.Context, gameID, identity string, cell int) (*entity.Room, error)
	DeleteRoom(ctx context.Context, roomID, identity string) error
}

type Server struct {
	logger      *slog.Logger
	coordinator gameCoordinator
	hub         *Hub
	metrics     *monitor.Metrics
	upgrader    websocket.Upgrader

	handlers map[string]func(ctx context.Context, client *Client, msg *Message) error
}

func New(logger *slog.Logger, coordinator gameCoordinator, hub *Hub, metrics *monitor.Metrics) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		coordinator: coordinator,
		hub:         hub,
		metrics:     metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, *Client, *Message) error),
	}

	server.handlers["room:create"] = server.handleCreateRoom
	server.handlers["room:join"] = server.handleJoinRoom
	server.handlers["room:delete"] = server.handleDeleteRoom
	server.handlers["game:start"] = server.handleStartGame
	server.handlers["game:turn"] = server.handleGameTurn

	return server
}

// Start - starts the WebSocket server and blocks until it fails or the
// context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
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

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	client := newClient(conn)
	that.hub.Register(client)
	that.metrics.ConnectedClients.Inc()

	defer func() {
		that.hub.Unregister(client)
		that.metrics.ConnectedClients.Dec()
		log.Info("client disconnected")
	}()

	log.Info("WebSocket connection established")

	that.readLoop(ctx, client, conn)
}

func (that *Server) readLoop(ctx context.Context, client *Client, conn *websocket.Conn) {
	log := that.logger.With("method", "readLoop")

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("connection closed unexpectedly", "error", err)
			}
			return
		}

		that.metrics.MessagesReceived.Inc()

		handler, ok := that.handlers[msg.Action]
		if !ok {
			log.Warn("unknown action", "action", msg.Action)
			that.reject(client, msg.Action, "unknown action")
			continue
		}

		if err := handler(ctx, client, &msg); err != nil {
			log.Error("error processing message", "action", msg.Action, "error", err)
		}
	}
}

func decodePayload(msg *Message) (*RequestPayload, error) {
	var payload RequestPayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	return &payload, nil
}
