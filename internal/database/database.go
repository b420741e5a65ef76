package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/mauv0809/tt-ratings/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// InitDB opens the configured database, applies the embedded migrations and
// returns a sqlx handle together with a teardown func that closes it.
func InitDB(cfg config.DatabaseConfig) (*sqlx.DB, func(), error) {
	driverName, dsn, dialect, err := resolve(cfg)
	if err != nil {
		return nil, nil, err
	}

	log.Info("Initializing database", "driver", driverName, "dialect", dialect)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s database: %w", driverName, err)
	}
	if driverName == "sqlite3" {
		// :memory: databases live per connection and SQLite has a single writer.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db, dialect); err != nil {
		db.Close()
		return nil, nil, err
	}

	dbx := sqlx.NewDb(db, driverName)
	teardown := func() {
		if err := dbx.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}
	log.Info("Database initialized successfully")
	return dbx, teardown, nil
}

func resolve(cfg config.DatabaseConfig) (driverName, dsn, dialect string, err error) {
	switch cfg.Driver {
	case "", config.DriverSQLite:
		name := cfg.Name
		if name == "" {
			name = "ratings.db"
		}
		return "sqlite3", name, "sqlite3", nil
	case config.DriverLibSQL:
		if cfg.Turso.PrimaryURL == "" {
			return "", "", "", fmt.Errorf("libsql driver requires a primary URL")
		}
		return "libsql", cfg.Turso.PrimaryURL + "?authToken=" + cfg.Turso.AuthToken, "turso", nil
	case config.DriverPostgres:
		if cfg.URL == "" {
			return "", "", "", fmt.Errorf("postgres driver requires a connection URL")
		}
		return "postgres", cfg.URL, "postgres", nil
	default:
		return "", "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func migrate(db *sql.DB, dialect string) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(log.Default())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
