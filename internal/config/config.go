package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config keeps runtime settings for the bot and the CLI.
type Config struct {
	TelegramToken string
	DatabaseURL   string
	// RemoteURL selects the remote task store: empty keeps it in the
	// application database, a postgres:// URL uses PostgreSQL.
	RemoteURL  string
	ReviewDay  string
	ReviewTime string
	LocalKey   string
	Location   *time.Location
}

var ErrTokenRequired = errors.New("TELEGRAM_TOKEN is required")

var defaults = map[string]string{
	"telegram_token": "",
	"database_url":   "taskflow.db",
	"remote_url":     "",
	"review_day":     "sunday",
	"review_time":    "18:00",
	"local_key":      "taskflow_ai_tasks",
	"timezone":       "Local",
}

// Load reads configuration from the environment and, when path is set, a
// config file. Environment variables win over the file.
func Load(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	loc, err := time.LoadLocation(strings.TrimSpace(v.GetString("timezone")))
	if err != nil {
		return Config{}, fmt.Errorf("load timezone: %w", err)
	}

	cfg := Config{
		TelegramToken: strings.TrimSpace(v.GetString("telegram_token")),
		DatabaseURL:   strings.TrimSpace(v.GetString("database_url")),
		RemoteURL:     strings.TrimSpace(v.GetString("remote_url")),
		ReviewDay:     strings.TrimSpace(v.GetString("review_day")),
		ReviewTime:    strings.TrimSpace(v.GetString("review_time")),
		LocalKey:      strings.TrimSpace(v.GetString("local_key")),
		Location:      loc,
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaults["database_url"]
	}
	if cfg.LocalKey == "" {
		cfg.LocalKey = defaults["local_key"]
	}
	return cfg, nil
}

// UsesPostgres reports whether RemoteURL points at PostgreSQL.
func (c Config) UsesPostgres() bool {
	return strings.HasPrefix(c.RemoteURL, "postgres://") || strings.HasPrefix(c.RemoteURL, "postgresql://")
}

// ValidateBot checks the settings only the bot needs.
func (c Config) ValidateBot() error {
	if c.TelegramToken == "" {
		return ErrTokenRequired
	}
	return nil
}
