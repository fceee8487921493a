package websocket

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/triquilabs/triqui-backend/internal/entity"
)

// Client wraps one WebSocket connection. Writes are serialized through the
// client's mutex because broadcasts and acks come from different goroutines.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

func (that *Client) send(action string, payload any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.conn.WriteJSON(envelope{Action: action, Payload: payload})
}

// Hub implements the coordinator's Broadcaster contract. It holds weak
// references: losing a connection removes it from the hub but never changes
// room state.
type Hub struct {
	logger *slog.Logger

	mu         sync.RWMutex
	clients    map[*Client]struct{}
	byIdentity map[string]*Client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "hub"),

		clients:    make(map[*Client]struct{}),
		byIdentity: make(map[string]*Client),
	}
}

func (that *Hub) Register(client *Client) {
	that.mu.Lock()
	that.clients[client] = struct{}{}
	that.mu.Unlock()
}

func (that *Hub) Unregister(client *Client) {
	that.mu.Lock()
	delete(that.clients, client)
	for identity, bound := range that.byIdentity {
		if bound == client {
			delete(that.byIdentity, identity)
		}
	}
	that.mu.Unlock()
}

// Bind associates an identity with a connection. A reconnecting identity
// simply rebinds to the newer connection.
func (that *Hub) Bind(identity string, client *Client) {
	that.mu.Lock()
	that.byIdentity[identity] = client
	that.mu.Unlock()
}

func (that *Hub) ToClient(identity, event string, payload any) {
	that.mu.RLock()
	client, ok := that.byIdentity[identity]
	that.mu.RUnlock()

	if !ok {
		that.logger.Warn("connection not found for player", "identity", identity)
		return
	}

	if err := client.send(event, payload); err != nil {
		that.logger.Error("failed to send event", "event", event, "identity", identity, "error", err)
	}
}

func (that *Hub) ToRoom(room *entity.Room, event string, payload any) {
	for _, player := range room.Players {
		that.ToClient(player.Identity, event, payload)
	}
}

func (that *Hub) ToAll(event string, payload any) {
	that.mu.RLock()
	clients := make([]*Client, 0, len(that.clients))
	for client := range that.clients {
		clients = append(clients, client)
	}
	that.mu.RUnlock()

	for _, client := range clients {
		if err := client.send(event, payload); err != nil {
			that.logger.Error("failed to broadcast event", "event", event, "error", err)
		}
	}
}
