// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// TokenEnv names the variable holding the Discord bot token.
const TokenEnv = "messagebot"

// Config holds the application configuration.
type Config struct {
	DiscordToken     string
	TelegramBotToken string
	CSVDir           string
	DatabasePath     string
	LogLevel         string
	AllowedUsers     []int64
	PageDelay        time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv(TokenEnv)
	if token == "" {
		return nil, fmt.Errorf("%s is required", TokenEnv)
	}

	csvDir := os.Getenv("CSV_DIR")
	if csvDir == "" {
		csvDir = "."
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/orders.db"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	pageDelay := time.Second
	if raw := os.Getenv("PAGE_DELAY"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid PAGE_DELAY %q", raw)
		}
		pageDelay = d
	}

	var allowedUsers []int64
	if raw := os.Getenv("ALLOWED_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
			}
			allowedUsers = append(allowedUsers, uid)
		}
	}

	return &Config{
		DiscordToken:     token,
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		CSVDir:           csvDir,
		DatabasePath:     dbPath,
		LogLevel:         logLevel,
		AllowedUsers:     allowedUsers,
		PageDelay:        pageDelay,
	}, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// IsUserIDAllowed is IsUserAllowed for ids carried as decimal strings.
func (c *Config) IsUserIDAllowed(userID string) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return false
	}
	return c.IsUserAllowed(id)
}
