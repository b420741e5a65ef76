package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	defaultBaseURL      = "https://www.ratingscentral.com"
	defaultFetchTimeout = 15 * time.Second
	defaultMonthsBack   = 12
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Debug("No .env file found, reading from environment variables")
	}

	cfg := Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			Name:   getEnv("DB_NAME", "ratings.db"),
			URL:    getEnv("DATABASE_URL", ""),
			Turso: TursoConfig{
				PrimaryURL: getEnv("TURSO_PRIMARY_URL", ""),
				AuthToken:  getEnv("TURSO_AUTH_TOKEN", ""),
			},
		},
		Ratings: RatingsConfig{
			BaseURL:      getEnv("RATINGS_BASE_URL", defaultBaseURL),
			FetchTimeout: getDuration("FETCH_TIMEOUT", defaultFetchTimeout),
		},
		Sync: SyncConfig{
			MonthsBack: getInt("SYNC_MONTHS_BACK", defaultMonthsBack),
		},
		Slack: SlackConfig{
			Token:     getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID: getEnv("SLACK_CHANNEL_ID", ""),
		},
		ProjectID: getEnv("GCP_PROJECT", ""),
	}

	if cfg.Database.Driver == DriverPostgres && cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required when DB_DRIVER=postgres")
	}
	if cfg.Database.Driver == DriverLibSQL && cfg.Database.Turso.PrimaryURL == "" {
		log.Fatal("TURSO_PRIMARY_URL is required when DB_DRIVER=libsql")
	}
	return cfg
}

// Level maps the configured level name onto a charmbracelet level.
func (c Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warn("Unknown LOG_LEVEL, falling back to info", "level", c.LogLevel)
		return log.InfoLevel
	}
	return level
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		log.Warn("Invalid integer in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		log.Warn("Invalid duration in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return value
}
