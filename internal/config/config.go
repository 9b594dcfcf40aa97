// Package config loads server configuration from a TOML file with
// environment overrides.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Auth modes.
const (
	AuthModeStore  = "store"  // tokens resolved against the sessions table
	AuthModeStatic = "static" // tokens from the [auth.tokens] map
)

type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `toml:"addr"`

	// DBPath is the SQLite event log location.
	DBPath string `toml:"db_path"`

	Auth AuthConfig `toml:"auth"`
}

type AuthConfig struct {
	Mode string `toml:"mode"`

	// Tokens maps token to user id in static mode.
	Tokens map[string]string `toml:"tokens"`
}

func Default() Config {
	return Config{
		Addr:   ":8080",
		DBPath: "./data/drawbridge.db",
		Auth:   AuthConfig{Mode: AuthModeStore},
	}
}

// Load reads the TOML file at path, falling back to defaults when path is
// empty or the file does not exist. Environment variables override either.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.Auth.Mode != AuthModeStore && cfg.Auth.Mode != AuthModeStatic {
		return Config{}, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DRAWBRIDGE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("DRAWBRIDGE_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DRAWBRIDGE_AUTH_MODE"); v != "" {
		cfg.Auth.Mode = v
	}
}
