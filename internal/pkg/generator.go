package pkg

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRoomID - generates an opaque unique token for a new room.
func GenerateRoomID() string {
	return "r_" + shortToken()
}

// GenerateGameID - generates a unique identifier for a game session.
func GenerateGameID() string {
	return "g_" + shortToken()
}

func shortToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
