package game

import "errors"

// Expected failure modes of state-machine operations. The transport layer maps
// these onto a uniform error event; none of them indicate a programmer error.
var (
	ErrLobbyNotFound  = errors.New("lobby not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidStatus  = errors.New("operation not valid in current lobby status")
	ErrNotHost        = errors.New("only the host may do this")
	ErrTooFewProducts = errors.New("not enough products for the configured rounds")
	ErrInvalidGuess   = errors.New("guess must be a positive number")
)
