package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/priceparty/priceparty-server/internal/config"
	"github.com/priceparty/priceparty-server/internal/core"
)

// NewServer builds the HTTP server: REST surface plus the websocket endpoint.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := NewAPIHandlers(hub, logger)
	router.GET("/health", api.Health)
	router.GET("/api/lobbies/:code", api.GetLobby)

	ws := NewWSHandler(hub, logger)
	router.GET("/ws", func(c *gin.Context) {
		ws.ServeHTTP(c.Writer, c.Request)
	})

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
