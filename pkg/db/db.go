package db

import (
	"fmt"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL (defaults to DATABASE_URL env var)
	URL string
	// Debug enables SQL query logging
	Debug bool
}

// Connect establishes a database connection.
// postgres:// and postgresql:// URLs use PostgreSQL, sqlite:// and file:
// URLs use SQLite. If no URL is provided, it reads DATABASE_URL.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = URL()
	}
	if dbURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	dialector, err := Dialector(dbURL)
	if err != nil {
		return nil, err
	}

	// Default to silent logging unless debug is requested
	logMode := logger.Silent
	if cfg.Debug {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Dialector picks the GORM dialector for a database URL.
func Dialector(dbURL string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		return postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}), nil
	case strings.HasPrefix(dbURL, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dbURL, "sqlite://")), nil
	case strings.HasPrefix(dbURL, "file:"):
		return sqlite.Open(dbURL), nil
	}
	return nil, fmt.Errorf("unsupported database URL scheme: %q", redact(dbURL))
}

// IsSQLite reports whether the URL selects the SQLite dialector.
func IsSQLite(dbURL string) bool {
	return strings.HasPrefix(dbURL, "sqlite://") || strings.HasPrefix(dbURL, "file:")
}

// URL returns the database URL from environment.
// Returns empty string if DATABASE_URL is not set.
func URL() string {
	return os.Getenv("DATABASE_URL")
}

func redact(dbURL string) string {
	if i := strings.Index(dbURL, "://"); i >= 0 {
		return dbURL[:i+3] + "..."
	}
	return "..."
}
