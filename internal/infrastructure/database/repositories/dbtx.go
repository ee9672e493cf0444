// Package repositories implements the domain repository interfaces against
// SQLite via database/sql, using raw SQL and Scan in the same style as the
// rest of this codebase's persistence layer.
package repositories

import (
	"context"
	"database/sql"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx, so every repository in
// this package can be constructed against a bare connection for read-only
// callers (reporting, export) or against the transaction a Unit of Work
// session is holding open.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
