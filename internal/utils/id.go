package utils

import "github.com/google/uuid"

// NewSessionID returns the identifier for one websocket session. It doubles
// as the player's session id inside a lobby, so it must be unguessable.
func NewSessionID() string {
	return uuid.NewString()
}
