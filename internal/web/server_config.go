package web

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvListenAddr = "SOCIALCARD_LISTEN"
	EnvDevMode    = "SOCIALCARD_DEV"
	EnvPublicURL  = "SOCIALCARD_PUBLIC_URL"
)

// ServerConfig contains settings for running the HTTP server.
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
	PublicURL  string
}

func DefaultServerConfigFromEnv(defaultListenAddr string) (ServerConfig, error) {
	listenAddr := os.Getenv(EnvListenAddr)
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	devMode := false
	if raw := os.Getenv(EnvDevMode); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s must be a boolean (got %q): %w", EnvDevMode, raw, err)
		}
		devMode = parsed
	}

	return ServerConfig{ListenAddr: listenAddr, DevMode: devMode, PublicURL: os.Getenv(EnvPublicURL)}, nil
}
