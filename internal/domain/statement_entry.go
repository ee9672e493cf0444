package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EntryStatus is the StatementEntry lifecycle state. It advances
// monotonically: IMPORTED -> MATCHED -> POSTED.
type EntryStatus string

const (
	EntryImported EntryStatus = "IMPORTED"
	EntryMatched  EntryStatus = "MATCHED"
	EntryPosted   EntryStatus = "POSTED"
)

// StatementEntry is one raw line from an imported statement, prior to being
// turned into a balanced Transaction.
type StatementEntry struct {
	ID                  uuid.UUID
	BatchID             uuid.UUID
	ExternalID          *string
	Payee               string
	Memo                string
	Amount              Money
	OccurredAt          time.Time
	Status              EntryStatus
	SuggestedAccountID  *uuid.UUID
	TransactionID       *uuid.UUID
	Metadata            map[string]any
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewStatementEntry constructs an entry in status IMPORTED.
func NewStatementEntry(batchID uuid.UUID, externalID *string, payee, memo string, amount Money, occurredAt time.Time, metadata map[string]any) *StatementEntry {
	now := time.Now().UTC()
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &StatementEntry{
		ID:         uuid.New(),
		BatchID:    batchID,
		ExternalID: externalID,
		Payee:      payee,
		Memo:       memo,
		Amount:     amount,
		OccurredAt: occurredAt,
		Status:     EntryImported,
		Metadata:   metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Match records a classification suggestion and transitions
// IMPORTED -> MATCHED.
func (e *StatementEntry) Match(accountID uuid.UUID) error {
	if e.Status != EntryImported {
		return ErrInvalidStatusTransition
	}
	e.Status = EntryMatched
	e.SuggestedAccountID = &accountID
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// Post records the posted transaction id and transitions MATCHED -> POSTED.
// TransactionID is non-nil if and only if Status is POSTED.
func (e *StatementEntry) Post(transactionID uuid.UUID) error {
	if e.Status != EntryMatched {
		return ErrInvalidStatusTransition
	}
	e.Status = EntryPosted
	e.TransactionID = &transactionID
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// StatementEntryRepository is the persistence capability for statement
// entries.
type StatementEntryRepository interface {
	Add(ctx context.Context, entry *StatementEntry) error
	Update(ctx context.Context, entry *StatementEntry) error
	ByID(ctx context.Context, id uuid.UUID) (*StatementEntry, error)
	ByBatch(ctx context.Context, batchID uuid.UUID) ([]*StatementEntry, error)
	ByStatus(ctx context.Context, status EntryStatus) ([]*StatementEntry, error)
	ExistsByBatchAndExternalID(ctx context.Context, batchID uuid.UUID, externalID string) (bool, error)
}
