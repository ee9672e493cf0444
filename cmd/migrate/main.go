package main

import (
	"log"
	"os"

	"finlite/internal/config"
	"finlite/internal/infrastructure/database"
)

// migrate applies the schema (C11) to the configured SQLite database.
// `migrate down` is not supported: the schema has a single migration and
// this ledger has no rollback story beyond restoring a file-level backup
// of the SQLite database, which is outside this binary's job.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		log.Fatal("failed to create data directory: ", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "down" {
		log.Fatal("down migrations are not supported; restore the SQLite file from backup instead")
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if err := database.RunMigrations(cfg.DatabasePath(), migrationsPath); err != nil {
		log.Fatal("migration failed: ", err)
	}

	log.Printf("migrations applied to %s", cfg.DatabasePath())
}
