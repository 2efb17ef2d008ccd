package core

import (
	"errors"

	"github.com/priceparty/priceparty-server/internal/game"
)

// Error codes surfaced to clients on the uniform error event.
const (
	ErrCodeLobbyNotFound   = "lobby_not_found"
	ErrCodeInvalidState    = "invalid_state"
	ErrCodePlayerNotFound  = "player_not_found"
	ErrCodeNotHost         = "not_host"
	ErrCodeInvalidProducts = "invalid_products"
	ErrCodeInvalidGuess    = "invalid_guess"
	ErrCodeBadRequest      = "bad_request"
	ErrCodeFetchFailed     = "product_fetch_failed"
	ErrCodeRateLimited     = "rate_limited"
	ErrCodeInternal        = "internal"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// coreErrorFrom translates game-layer failures into coded client errors.
func coreErrorFrom(err error) *CoreError {
	switch {
	case errors.Is(err, game.ErrLobbyNotFound):
		return coreError(ErrCodeLobbyNotFound, err.Error())
	case errors.Is(err, game.ErrPlayerNotFound):
		return coreError(ErrCodePlayerNotFound, err.Error())
	case errors.Is(err, game.ErrNotHost):
		return coreError(ErrCodeNotHost, err.Error())
	case errors.Is(err, game.ErrTooFewProducts), errors.Is(err, game.ErrInvalidProduct):
		return coreError(ErrCodeInvalidProducts, err.Error())
	case errors.Is(err, game.ErrInvalidGuess):
		return coreError(ErrCodeInvalidGuess, err.Error())
	case errors.Is(err, game.ErrInvalidStatus):
		return coreError(ErrCodeInvalidState, err.Error())
	default:
		return coreError(ErrCodeInternal, err.Error())
	}
}
