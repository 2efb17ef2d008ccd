package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/priceparty/priceparty-server/internal/core"
	"github.com/priceparty/priceparty-server/internal/game"
)

// APIHandlers provides the small REST surface next to the websocket: a health
// probe and a read-only lobby snapshot (used for join-link previews and
// debugging).
type APIHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{hub: hub, log: logger}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health reports liveness.
// GET /health
func (h *APIHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GetLobby returns the current snapshot of a lobby.
// GET /api/lobbies/:code
func (h *APIHandlers) GetLobby(c *gin.Context) {
	code := c.Param("code")
	snap, err := h.hub.Snapshot(code)
	if err != nil {
		if errors.Is(err, game.ErrLobbyNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "lobby not found"})
			return
		}
		h.log.Error().Err(err).Str("code", code).Msg("failed to snapshot lobby")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
