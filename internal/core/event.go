package core

import "github.com/priceparty/priceparty-server/internal/game"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventLobbyState is the canonical full-state broadcast after a mutation.
	EventLobbyState EventKind = iota
	// EventGameLoading is emitted while the product fetch is pending.
	EventGameLoading
	// EventGameStarted announces a round's product.
	EventGameStarted
	// EventRoundTick is the per-second round countdown.
	EventRoundTick
	// EventRoundResults carries the computed round outcome.
	EventRoundResults
	// EventReadyTick is the per-second ready-check countdown.
	EventReadyTick
	// EventGameEnded carries the final leaderboard.
	EventGameEnded
	// EventPlayerKicked is sent to the kicked client only.
	EventPlayerKicked
	// EventError reports a rejected operation to the requesting client.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind  EventKind
	Code  string
	Lobby *game.Snapshot // for EventLobbyState

	Message     string // for EventGameLoading
	Product     *game.Product
	Round       int
	TotalRounds int
	TimeLeft    int // seconds, for countdown ticks

	Results     *game.RoundResult
	Leaderboard []game.LeaderboardEntry // for EventGameEnded

	Error *CoreError
}
