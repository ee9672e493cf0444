package application

import (
	"context"
	"database/sql"
	"io"
	"time"

	"finlite/internal/export"
	"finlite/internal/infrastructure/database/repositories"
	"finlite/internal/reporting"
)

// ReportingService runs the read-only reporting and export paths (C7, C8)
// directly against the database connection — these never mutate the
// ledger, so they don't need a Unit of Work's commit/rollback lifecycle.
type ReportingService struct {
	db *sql.DB
}

// NewReportingService constructs a ReportingService over db.
func NewReportingService(db *sql.DB) *ReportingService {
	return &ReportingService{db: db}
}

// Cashflow computes the cashflow report over [from, to] in one currency.
func (s *ReportingService) Cashflow(ctx context.Context, from, to time.Time, currency string) (*reporting.Cashflow, error) {
	accounts := repositories.NewAccountRepository(s.db)
	transactions := repositories.NewTransactionRepository(s.db)
	return reporting.Cashflow(ctx, accounts, transactions, from, to, currency)
}

// BalanceSheet computes the balance sheet as of a date, in one currency.
func (s *ReportingService) BalanceSheet(ctx context.Context, at time.Time, currency string) (*reporting.BalanceSheet, error) {
	accounts := repositories.NewAccountRepository(s.db)
	transactions := repositories.NewTransactionRepository(s.db)
	return reporting.BalanceSheetAt(ctx, accounts, transactions, at, currency)
}

// Beancount writes the full ledger to w as a Beancount journal.
func (s *ReportingService) Beancount(ctx context.Context, w io.Writer, operatingCurrency string) error {
	accounts := repositories.NewAccountRepository(s.db)
	transactions := repositories.NewTransactionRepository(s.db)
	return export.Beancount(ctx, accounts, transactions, w, operatingCurrency)
}
