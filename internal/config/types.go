package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	Port      string
	LogLevel  string
	Database  DatabaseConfig
	Ratings   RatingsConfig
	Sync      SyncConfig
	Slack     SlackConfig
	ProjectID string
}

// DatabaseConfig selects and locates the relational store.
type DatabaseConfig struct {
	Driver        string // sqlite, libsql or postgres
	Name          string // sqlite file path
	URL           string // postgres connection string
	Turso         TursoConfig
	MigrationsDir string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// RatingsConfig configures the scraper for the external ratings site.
type RatingsConfig struct {
	BaseURL      string
	FetchTimeout time.Duration
}

type SyncConfig struct {
	MonthsBack int
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

const (
	DriverSQLite   = "sqlite"
	DriverLibSQL   = "libsql"
	DriverPostgres = "postgres"
)
