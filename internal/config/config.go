package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
)

const (
	defaultDatabaseURL = "file:crm.db?_foreign_keys=on"
	defaultPort        = "10000"
)

// Config holds everything the process needs from the environment. It is
// constructed once in main and passed down explicitly, never read from
// globals.
type Config struct {
	DatabaseURL   string
	Port          string
	SessionSecret string
}

// Load reads configuration from environment variables, applying defaults
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Port:          os.Getenv("PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		cfg.SessionSecret = secret
		log.Println("SESSION_SECRET not set, generated a random one; sessions will not survive a restart")
	}

	return cfg, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
