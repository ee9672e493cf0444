package application

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"finlite/internal/events"
	"finlite/internal/infrastructure/database/repositories"
)

func nowForTests() time.Time {
	return time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
}

const schemaSQL = `
CREATE TABLE accounts (
    id TEXT PRIMARY KEY, code TEXT NOT NULL UNIQUE, name TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('ASSET','LIABILITY','EQUITY','INCOME','EXPENSE')),
    currency TEXT NOT NULL, parent_id TEXT REFERENCES accounts(id), is_active INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL, updated_at TEXT NOT NULL
);
CREATE TABLE import_batches (
    id TEXT PRIMARY KEY, source TEXT NOT NULL, filename TEXT NOT NULL, file_sha256 TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('PENDING','COMPLETED','FAILED','REVERSED')),
    transaction_count INTEGER NOT NULL DEFAULT 0, started_at TEXT NOT NULL,
    completed_at TEXT, error_message TEXT, metadata TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL, updated_at TEXT NOT NULL
);
CREATE UNIQUE INDEX idx_import_batches_sha256_active ON import_batches(file_sha256) WHERE status != 'REVERSED';
CREATE TABLE transactions (
    id TEXT PRIMARY KEY, date TEXT NOT NULL, description TEXT NOT NULL, tags TEXT NOT NULL DEFAULT '[]',
    notes TEXT, import_batch_id TEXT REFERENCES import_batches(id), finalized INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL, updated_at TEXT NOT NULL
);
CREATE TABLE postings (
    id INTEGER PRIMARY KEY AUTOINCREMENT, transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
    ordinal INTEGER NOT NULL, account_id TEXT NOT NULL REFERENCES accounts(id),
    amount TEXT NOT NULL, currency TEXT NOT NULL, notes TEXT
);
CREATE TRIGGER trg_transactions_balance_on_finalize
BEFORE UPDATE OF finalized ON transactions
WHEN NEW.finalized = 1
BEGIN
    SELECT RAISE(ABORT, 'transaction postings do not balance')
    WHERE EXISTS (
        SELECT 1 FROM postings WHERE transaction_id = NEW.id
        GROUP BY currency HAVING ABS(SUM(CAST(amount AS REAL))) > 0.00005
    );
END;
CREATE TABLE statement_entries (
    id TEXT PRIMARY KEY, batch_id TEXT NOT NULL REFERENCES import_batches(id) ON DELETE CASCADE,
    external_id TEXT NOT NULL, payee TEXT, memo TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL, currency TEXT NOT NULL, occurred_at TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('IMPORTED','MATCHED','POSTED')),
    suggested_account_id TEXT REFERENCES accounts(id), transaction_id TEXT REFERENCES transactions(id),
    metadata TEXT NOT NULL DEFAULT '{}', created_at TEXT NOT NULL, updated_at TEXT NOT NULL,
    UNIQUE(batch_id, external_id)
);
`

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func newTestUnitOfWork(t *testing.T) *repositories.UnitOfWork {
	t.Helper()
	return repositories.NewUnitOfWork(newTestDB(t), nil)
}

// newTestUnitOfWorkWithReporting returns a UnitOfWork and a ReportingService
// sharing the same underlying database, for scenarios that both mutate the
// ledger through a session and read it back through the reporting path.
func newTestUnitOfWorkWithReporting(t *testing.T) (*repositories.UnitOfWork, *ReportingService) {
	t.Helper()
	db := newTestDB(t)
	return repositories.NewUnitOfWork(db, nil), NewReportingService(db)
}

func newTestBus() *events.Bus {
	return events.NewBus(zap.NewNop())
}
