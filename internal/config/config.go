package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// MemoryDSN selects the in-memory store instead of PostgreSQL.
const MemoryDSN = "memory"

const DefaultLocale = "en"

type Config struct {
	DatabaseDSN    string
	ServerAddr     string
	SigningKey     []byte
	AllowedOrigins []string
	AIBaseURL      string
	AIKey          string
	Locale         string
	Migrate        bool
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, err
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("signing secret is empty")
	}
	return key, nil
}

func NewConfig(serverAddr, databaseDSN, base64Secret string, allowedOrigins []string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}

	signingKey, err := decodeSigningSecret(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	return &Config{
		DatabaseDSN:    databaseDSN,
		ServerAddr:     serverAddr,
		SigningKey:     signingKey,
		AllowedOrigins: allowedOrigins,
		Locale:         DefaultLocale,
	}, nil
}

// SetAI configures the suggestion gateway. An empty base URL disables it.
func (c *Config) SetAI(baseURL, key string) *Config {
	c.AIBaseURL = strings.TrimSpace(baseURL)
	c.AIKey = key
	return c
}

func (c *Config) SetLocale(locale string) *Config {
	if locale = strings.TrimSpace(locale); locale != "" {
		c.Locale = locale
	}
	return c
}

func (c *Config) SetMigrate(migrate bool) *Config {
	c.Migrate = migrate
	return c
}

// InMemory reports whether the in-memory store was requested.
func (c *Config) InMemory() bool {
	return c.DatabaseDSN == MemoryDSN
}

// Env returns the value of the environment variable key, or def when unset.
func Env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
