package events

import (
	"time"

	"github.com/google/uuid"
)

// StatementImported fires once an import batch has been persisted
// successfully, before classification runs.
type StatementImported struct {
	BatchID    uuid.UUID
	Filename   string
	EntryCount int
	OccurredAt time.Time
}

// StatementImportFailed fires when a batch could not be parsed or stored.
type StatementImportFailed struct {
	BatchID    uuid.UUID
	Filename   string
	Reason     string
	OccurredAt time.Time
}

// StatementMatched fires when the rule engine assigns a suggested account
// to an entry.
type StatementMatched struct {
	EntryID    uuid.UUID
	AccountID  uuid.UUID
	OccurredAt time.Time
}

// StatementPosted fires when the posting engine turns a matched entry into
// a balanced transaction.
type StatementPosted struct {
	EntryID       uuid.UUID
	TransactionID uuid.UUID
	OccurredAt    time.Time
}
