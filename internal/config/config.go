package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config aggregates every setting of the service.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Websocket WebsocketConfig
}

// ServerConfig describes the HTTP server.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// StoreConfig describes the message store.
type StoreConfig struct {
	Path     string `envconfig:"DB_PATH" default:"chat.db"`
	InMemory bool   `envconfig:"DB_IN_MEMORY" default:"false"`
}

// WebsocketConfig describes per-connection delivery settings.
type WebsocketConfig struct {
	// SendBuffer is the per-peer outbound queue; a peer whose queue is full
	// fails delivery instead of blocking fan-out.
	SendBuffer   int           `envconfig:"WS_SEND_BUFFER" default:"32"`
	WriteTimeout time.Duration `envconfig:"WS_WRITE_TIMEOUT" default:"10s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Server.Addr(); err != nil {
		return nil, err
	}
	if cfg.Websocket.SendBuffer < 1 {
		return nil, fmt.Errorf("WS_SEND_BUFFER must be positive, got %d", cfg.Websocket.SendBuffer)
	}
	return &cfg, nil
}

// Addr resolves the listen address. PORT may be a bare port ("8080") or a full
// address (":8080", "127.0.0.1:8080").
func (c ServerConfig) Addr() (string, error) {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}
