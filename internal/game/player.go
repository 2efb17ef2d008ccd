package game

import "time"

// Player is one participant in a lobby.
//
// SessionID changes whenever the transport connection is re-established;
// ClientID is the stable identity a browser keeps across refreshes. Reconnect
// matching prefers ClientID and falls back to the display name.
type Player struct {
	SessionID string
	ClientID  string
	Name      string
	IsHost    bool
	Score     int
	Connected bool
	JoinedAt  time.Time
}
