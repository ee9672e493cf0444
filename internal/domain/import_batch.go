package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BatchSource identifies the statement format a batch was parsed from.
// Extensible: new sources are added as additional constants.
type BatchSource string

const (
	SourceNubankCSV BatchSource = "NUBANK_CSV"
	SourceOFX       BatchSource = "OFX"
)

// BatchStatus is the ImportBatch lifecycle state. Transitions follow
// PENDING -> COMPLETED | FAILED, and COMPLETED -> REVERSED.
type BatchStatus string

const (
	BatchPending   BatchStatus = "PENDING"
	BatchCompleted BatchStatus = "COMPLETED"
	BatchFailed    BatchStatus = "FAILED"
	BatchReversed  BatchStatus = "REVERSED"
)

// ImportBatch is the aggregate root recording a single file import.
type ImportBatch struct {
	ID               uuid.UUID
	Source           BatchSource
	Filename         string
	FileSHA256       string
	Status           BatchStatus
	TransactionCount int
	StartedAt        time.Time
	CompletedAt      *time.Time
	ErrorMessage     *string
	Metadata         map[string]any
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewImportBatch creates a batch in status PENDING.
func NewImportBatch(source BatchSource, filename, fileSHA256 string, metadata map[string]any) *ImportBatch {
	now := time.Now().UTC()
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &ImportBatch{
		ID:         uuid.New(),
		Source:     source,
		Filename:   filename,
		FileSHA256: fileSHA256,
		Status:     BatchPending,
		Metadata:   metadata,
		StartedAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Complete transitions PENDING -> COMPLETED, recording the entry count.
func (b *ImportBatch) Complete(transactionCount int) error {
	if b.Status != BatchPending {
		return ErrInvalidStatusTransition
	}
	now := time.Now().UTC()
	b.Status = BatchCompleted
	b.TransactionCount = transactionCount
	b.CompletedAt = &now
	b.UpdatedAt = now
	return nil
}

// Fail transitions PENDING -> FAILED, recording the error message.
func (b *ImportBatch) Fail(message string) error {
	if b.Status != BatchPending {
		return ErrInvalidStatusTransition
	}
	now := time.Now().UTC()
	b.Status = BatchFailed
	b.ErrorMessage = &message
	b.UpdatedAt = now
	return nil
}

// Reverse transitions COMPLETED -> REVERSED, freeing its file hash for
// re-import.
func (b *ImportBatch) Reverse() error {
	if b.Status != BatchCompleted {
		return ErrInvalidStatusTransition
	}
	b.Status = BatchReversed
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// ImportBatchRepository is the persistence capability for import batches.
type ImportBatchRepository interface {
	Add(ctx context.Context, batch *ImportBatch) error
	Update(ctx context.Context, batch *ImportBatch) error
	ByID(ctx context.Context, id uuid.UUID) (*ImportBatch, error)
	ByFileSHA256(ctx context.Context, sha256 string) (*ImportBatch, error)
	ListAll(ctx context.Context) ([]*ImportBatch, error)
}
