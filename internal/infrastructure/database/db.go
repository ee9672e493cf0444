package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/mattn/go-sqlite3"
)

// New opens the SQLite database file at path, enabling WAL journaling and
// foreign-key enforcement — both off by default in SQLite and required by
// the rest of this package for durable concurrent reads and referential
// integrity between transactions, postings, and accounts.
func New(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite serializes writers internally; a single connection avoids
	// "database is locked" errors from concurrent writer goroutines within
	// this process, matching the single-writer concurrency model spec.md
	// requires for the unit of work.
	db.SetMaxOpenConns(1)

	return db, nil
}

// RunMigrations applies every pending migration in migrationsPath to the
// database at dbPath.
func RunMigrations(dbPath, migrationsPath string) error {
	db, err := New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	resolvedPath := resolveMigrationsPath(migrationsPath)

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", resolvedPath),
		"sqlite3",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// resolveMigrationsPath tries the given path and a handful of fallbacks
// relative to common working directories (repo root, cmd subdirectory),
// so the binary finds its migrations whether it's run via `go run`, as a
// built binary from the repo root, or from within cmd/.
func resolveMigrationsPath(preferred string) string {
	candidates := []string{
		preferred,
		"internal/infrastructure/database/migrations",
		"../internal/infrastructure/database/migrations",
		"../../internal/infrastructure/database/migrations",
	}

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			absPath, absErr := filepath.Abs(path)
			if absErr == nil {
				return absPath
			}
			return path
		}
	}
	return preferred
}
