// Command finlite is the composition root for the read-only reporting
// server: it wires configuration, storage, and the HTTP surface over the
// cashflow, balance-sheet, and Beancount export paths, then serves. The
// ledger's write paths (chart-of-accounts, ingestion, classification,
// posting) are library code in internal/application meant to be driven by
// an external collaborator; this binary only exposes the query side.
package main

import (
	"log"

	"go.uber.org/zap"

	"finlite/internal/application"
	"finlite/internal/config"
	"finlite/internal/infrastructure/database"
	httptransport "finlite/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		log.Fatal("failed to create data directory: ", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to build logger: ", err)
	}
	defer logger.Sync()

	db, err := database.New(cfg.DatabasePath())
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	reports := application.NewReportingService(db)
	router := httptransport.NewRouter(reports)

	logger.Info("finlite reporting server starting", zap.String("port", cfg.HTTPPort))
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	var lvl zap.AtomicLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapCfg.Level = lvl
	return zapCfg.Build()
}
