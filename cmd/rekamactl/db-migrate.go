package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/cyberarian/rekama-sys/pkg/db"
)

// migrationsTable keeps golang-migrate's bookkeeping apart from the data
// tables.
const migrationsTable = "rekama_schema_migrations"

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

This command runs all pending migrations against database_url and, when it
is set, audit_database_url. SQLite databases create their snapshot table on
open and need no migrations.

Example:
  rekamactl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrations(); err != nil {
			fmt.Println("Migration failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1)
on database_url.

Example:
  rekamactl db down      # Rollback 1 migration
  rekamactl db down 2    # Rollback 2 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				fmt.Fprintf(os.Stderr, "invalid step count %q\n", args[0])
				os.Exit(1)
			}
			steps = n
		}

		if err := runMigrationsDown(steps); err != nil {
			fmt.Println("Rollback failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current database migration version.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showMigrationStatus(); err != nil {
			fmt.Println("Failed to get status:", err)
			os.Exit(1)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

// migrationTargets lists the PostgreSQL databases the schema applies to.
func migrationTargets() ([]string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	var urls []string
	if cfg.DatabaseURL != "" && !db.IsSQLite(cfg.DatabaseURL) {
		urls = append(urls, cfg.DatabaseURL)
	}
	if cfg.AuditDatabaseURL != "" && cfg.AuditDatabaseURL != cfg.DatabaseURL {
		urls = append(urls, cfg.AuditDatabaseURL)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("database_url or audit_database_url is required")
	}
	return urls, nil
}

// withMigrationsTable adds the custom migrations table parameter.
func withMigrationsTable(dbURL string) string {
	if strings.Contains(dbURL, "?") {
		return dbURL + "&x-migrations-table=" + migrationsTable
	}
	return dbURL + "?x-migrations-table=" + migrationsTable
}

func runMigrations() error {
	urls, err := migrationTargets()
	if err != nil {
		return err
	}
	for _, dbURL := range urls {
		if err := migrateUp(dbURL); err != nil {
			return err
		}
	}
	fmt.Println("Migrations complete")
	return nil
}

func migrateUp(dbURL string) error {
	m, err := createMigrateInstance(withMigrationsTable(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, _ := m.Version()
	fmt.Printf("Current version: %d (dirty: %v)\n", version, dirty)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No migrations to run - database is up to date")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	newVersion, _, _ := m.Version()
	fmt.Printf("Migrated to version: %d\n", newVersion)
	return nil
}

func runMigrationsDown(steps int) error {
	urls, err := migrationTargets()
	if err != nil {
		return err
	}

	m, err := createMigrateInstance(withMigrationsTable(urls[0]))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	fmt.Printf("Rolling back %d migration(s)...\n", steps)

	if err := m.Steps(-steps); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	version, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("Rolled back all migrations")
		return nil
	}
	fmt.Printf("Rolled back to version: %d\n", version)
	return nil
}

func showMigrationStatus() error {
	urls, err := migrationTargets()
	if err != nil {
		return err
	}

	for _, dbURL := range urls {
		m, err := createMigrateInstance(withMigrationsTable(dbURL))
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}

		version, dirty, err := m.Version()
		_, _ = m.Close()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("No migrations have been applied yet")
			continue
		}
		if err != nil {
			return err
		}

		fmt.Printf("Current version: %d\n", version)
		if dirty {
			fmt.Println("Warning: Database is in a dirty state")
		}
	}
	return nil
}
