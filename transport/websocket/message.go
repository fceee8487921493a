package websocket

import "encoding/json"

// Message is the wire envelope: an action name and an action-specific payload.
// Outbound events reuse the same envelope with the event name as action.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type envelope struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

// RequestPayload covers every inbound action; handlers pick the fields they
// need and reject requests missing them.
type RequestPayload struct {
	Player string `json:"player,omitempty"`
	RoomID string `json:"room_id,omitempty"`
	GameID string `json:"game_id,omitempty"`
	Cell   *int   `json:"cell,omitempty"`
}

// AckPayload is the direct acknowledgment sent to the requesting connection.
// A rejected request gets ok=false and a reason, and nothing is broadcast.
type AckPayload struct {
	OK     bool   `json:"ok"`
	RoomID string `json:"room_id,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	Reason string `json:"reason,omitempty"`
}
