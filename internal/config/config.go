// Package config loads process configuration and the tracked repository list.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultPort is the proxy's listening port when PORT is unset.
const DefaultPort = 4000

// Config holds process-wide settings. It is read once at startup and passed
// explicitly to the components that need it.
type Config struct {
	Port int
	// Token is the server-side GitHub token. It may be empty: the server starts,
	// and requests without their own token fail.
	Token     string
	ReposFile string
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:      DefaultPort,
		Token:     os.Getenv("GITHUB_TOKEN"),
		ReposFile: os.Getenv("RELEASE_CADENCE_REPOS"),
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}
	return cfg, nil
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
