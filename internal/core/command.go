package core

import "github.com/priceparty/priceparty-server/internal/game"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandCreateLobby opens a new lobby with the sender as host.
	CommandCreateLobby CommandKind = iota
	// CommandJoinLobby joins (or rejoins) a lobby by code.
	CommandJoinLobby
	// CommandLeaveLobby removes the sender from their lobby.
	CommandLeaveLobby
	// CommandUpdateSettings patches lobby settings (host only, pre-game).
	CommandUpdateSettings
	// CommandKickPlayer removes another player (host only).
	CommandKickPlayer
	// CommandStartGame begins a game, fetching products asynchronously.
	CommandStartGame
	// CommandStartWithProducts begins a game with a caller-supplied catalog.
	CommandStartWithProducts
	// CommandSubmitGuess records the sender's guess for the current round.
	CommandSubmitGuess
	// CommandPlayerReady marks the sender ready for the next round.
	CommandPlayerReady
	// CommandResetGame returns a finished lobby to the waiting state.
	CommandResetGame
)

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	Code     string
	Name     string // display name, for create/join
	ClientID string // stable browser identity, for create/join

	Rounds        *int    // settings patch / create
	ProductSource *string // settings patch / create

	TargetID string // kick
	Guess    float64
	Products []game.Product
}
