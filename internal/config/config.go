package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// CatalogPath points at the scraped product database. Empty falls back
	// to the built-in demo catalog.
	CatalogPath string `mapstructure:"catalog_path" yaml:"catalog_path"`

	RoundDuration  time.Duration `mapstructure:"round_duration" yaml:"round_duration"`
	ReadyDuration  time.Duration `mapstructure:"ready_duration" yaml:"ready_duration"`
	ReconnectGrace time.Duration `mapstructure:"reconnect_grace" yaml:"reconnect_grace"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout" yaml:"fetch_timeout"`

	LobbyTTL        time.Duration `mapstructure:"lobby_ttl" yaml:"lobby_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
}

// Default returns configuration with production game timings.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		RoundDuration:     30 * time.Second,
		ReadyDuration:     45 * time.Second,
		ReconnectGrace:    2 * time.Minute,
		FetchTimeout:      15 * time.Second,
		LobbyTTL:          time.Hour,
		CleanupInterval:   10 * time.Minute,
	}
}
