package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/priceparty/priceparty-server/internal/catalog"
	"github.com/priceparty/priceparty-server/internal/config"
	"github.com/priceparty/priceparty-server/internal/core"
	"github.com/priceparty/priceparty-server/internal/game"
	transporthttp "github.com/priceparty/priceparty-server/internal/transport/http"
)

// App wires together the game core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	cleanupInterval time.Duration
	hub             *core.Hub
	closer          func() error
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	var source catalog.Source
	var closer func() error
	if cfg.CatalogPath != "" {
		sq, err := catalog.OpenSQLite(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("init catalog: %w", err)
		}
		logger.Info().Str("catalog_path", cfg.CatalogPath).Msg("catalog database opened")
		source = sq
		closer = sq.Close
	} else {
		logger.Info().Msg("no catalog configured, using built-in demo products")
		source = catalog.NewStaticSource(catalog.DemoProducts)
	}

	store := game.NewStore()
	hub := core.NewHub(store, source, core.Timing{
		RoundDuration:  cfg.RoundDuration,
		ReadyDuration:  cfg.ReadyDuration,
		ReconnectGrace: cfg.ReconnectGrace,
		FetchTimeout:   cfg.FetchTimeout,
		LobbyTTL:       cfg.LobbyTTL,
	}, logger)
	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		cleanupInterval: cfg.CleanupInterval,
		hub:             hub,
		closer:          closer,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)
	go a.cleanupLoop(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanupLoop periodically garbage-collects lobbies that have idled past TTL.
func (a *App) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.hub.CleanupStaleLobbies()
		}
	}
}

// cleanup closes the catalog and other resources.
func (a *App) cleanup() {
	if a.closer != nil {
		if err := a.closer(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close catalog")
		} else {
			a.log.Info().Msg("catalog closed")
		}
	}
}
