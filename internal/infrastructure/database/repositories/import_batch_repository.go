package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"finlite/internal/domain"
)

type importBatchRepository struct {
	db dbtx
}

// NewImportBatchRepository constructs a domain.ImportBatchRepository
// backed by db.
func NewImportBatchRepository(db dbtx) domain.ImportBatchRepository {
	return &importBatchRepository{db: db}
}

func (r *importBatchRepository) Add(ctx context.Context, batch *domain.ImportBatch) error {
	metadataJSON, err := json.Marshal(batch.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO import_batches (
			id, source, filename, file_sha256, status, transaction_count,
			started_at, completed_at, error_message, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID.String(), string(batch.Source), batch.Filename, batch.FileSHA256, string(batch.Status),
		batch.TransactionCount, formatTime(batch.StartedAt), nullableTime(batch.CompletedAt),
		nullableString(batch.ErrorMessage), string(metadataJSON), formatTime(batch.CreatedAt), formatTime(batch.UpdatedAt),
	)
	if isUniqueConstraintErr(err) {
		existing, findErr := r.ByFileSHA256(ctx, batch.FileSHA256)
		if findErr == nil && existing != nil {
			return &domain.DuplicateImportError{ExistingBatchID: existing.ID.String()}
		}
		return domain.ErrDuplicateImport
	}
	return err
}

func (r *importBatchRepository) Update(ctx context.Context, batch *domain.ImportBatch) error {
	metadataJSON, err := json.Marshal(batch.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE import_batches
		SET status = ?, transaction_count = ?, completed_at = ?, error_message = ?, metadata = ?, updated_at = ?
		WHERE id = ?`,
		string(batch.Status), batch.TransactionCount, nullableTime(batch.CompletedAt),
		nullableString(batch.ErrorMessage), string(metadataJSON), formatTime(batch.UpdatedAt), batch.ID.String(),
	)
	return err
}

func (r *importBatchRepository) ByID(ctx context.Context, id uuid.UUID) (*domain.ImportBatch, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, source, filename, file_sha256, status, transaction_count,
			started_at, completed_at, error_message, metadata, created_at, updated_at
		FROM import_batches WHERE id = ?`, id.String())
	return scanImportBatch(row)
}

func (r *importBatchRepository) ByFileSHA256(ctx context.Context, sha256 string) (*domain.ImportBatch, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, source, filename, file_sha256, status, transaction_count,
			started_at, completed_at, error_message, metadata, created_at, updated_at
		FROM import_batches WHERE file_sha256 = ? AND status != 'REVERSED'`, sha256)
	return scanImportBatch(row)
}

func (r *importBatchRepository) ListAll(ctx context.Context) ([]*domain.ImportBatch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source, filename, file_sha256, status, transaction_count,
			started_at, completed_at, error_message, metadata, created_at, updated_at
		FROM import_batches ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ImportBatch
	for rows.Next() {
		batch, err := scanImportBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, batch)
	}
	return out, rows.Err()
}

func scanImportBatch(row accountScanner) (*domain.ImportBatch, error) {
	var (
		id, source, filename, sha256, status, metadataJSON string
		transactionCount                                   int
		startedAt, createdAt, updatedAt                     string
		completedAt, errorMessage                           sql.NullString
	)
	err := row.Scan(&id, &source, &filename, &sha256, &status, &transactionCount,
		&startedAt, &completedAt, &errorMessage, &metadataJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrImportBatchNotFound
	}
	if err != nil {
		return nil, err
	}

	batch := &domain.ImportBatch{
		ID:               uuid.MustParse(id),
		Source:           domain.BatchSource(source),
		Filename:         filename,
		FileSHA256:       sha256,
		Status:           domain.BatchStatus(status),
		TransactionCount: transactionCount,
	}
	batch.StartedAt, _ = parseTime(startedAt)
	batch.CreatedAt, _ = parseTime(createdAt)
	batch.UpdatedAt, _ = parseTime(updatedAt)
	if completedAt.Valid {
		t, _ := parseTime(completedAt.String)
		batch.CompletedAt = &t
	}
	if errorMessage.Valid {
		msg := errorMessage.String
		batch.ErrorMessage = &msg
	}
	metadata := map[string]any{}
	_ = json.Unmarshal([]byte(metadataJSON), &metadata)
	batch.Metadata = metadata
	return batch, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
