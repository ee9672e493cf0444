// Package ingest parses raw statement files (Nubank-style CSV, OFX) into a
// source-agnostic slice of parsed entries, ready for persistence as
// StatementEntry rows. It performs no I/O against the database and knows
// nothing about import batches or duplicate detection; that orchestration
// lives in the application layer.
package ingest

import "time"

// ParsedEntry is one statement line, independent of its source format.
type ParsedEntry struct {
	ExternalID string
	Payee      string
	Memo       string
	AmountText string
	Currency   string
	OccurredAt time.Time
}
