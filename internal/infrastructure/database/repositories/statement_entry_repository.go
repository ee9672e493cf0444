package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finlite/internal/domain"
)

type statementEntryRepository struct {
	db dbtx
}

// NewStatementEntryRepository constructs a domain.StatementEntryRepository
// backed by db.
func NewStatementEntryRepository(db dbtx) domain.StatementEntryRepository {
	return &statementEntryRepository{db: db}
}

func (r *statementEntryRepository) Add(ctx context.Context, entry *domain.StatementEntry) error {
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO statement_entries (
			id, batch_id, external_id, payee, memo, amount, currency, occurred_at,
			status, suggested_account_id, transaction_id, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(), entry.BatchID.String(), nullableString(entry.ExternalID), entry.Payee, entry.Memo,
		entry.Amount.StringFixed(domain.MoneyScale), entry.Amount.Currency(), formatTime(entry.OccurredAt),
		string(entry.Status), nullableUUID(entry.SuggestedAccountID), nullableUUID(entry.TransactionID),
		string(metadataJSON), formatTime(entry.CreatedAt), formatTime(entry.UpdatedAt),
	)
	if isUniqueConstraintErr(err) {
		return domain.ErrDuplicateStatementEntry
	}
	return err
}

func (r *statementEntryRepository) Update(ctx context.Context, entry *domain.StatementEntry) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE statement_entries
		SET status = ?, suggested_account_id = ?, transaction_id = ?, metadata = ?, updated_at = ?
		WHERE id = ?`,
		string(entry.Status), nullableUUID(entry.SuggestedAccountID), nullableUUID(entry.TransactionID),
		mustMarshal(entry.Metadata), formatTime(entry.UpdatedAt), entry.ID.String(),
	)
	return err
}

func (r *statementEntryRepository) ByID(ctx context.Context, id uuid.UUID) (*domain.StatementEntry, error) {
	row := r.db.QueryRowContext(ctx, entrySelect+` WHERE id = ?`, id.String())
	return scanStatementEntry(row)
}

func (r *statementEntryRepository) ByBatch(ctx context.Context, batchID uuid.UUID) ([]*domain.StatementEntry, error) {
	rows, err := r.db.QueryContext(ctx, entrySelect+` WHERE batch_id = ? ORDER BY occurred_at, id`, batchID.String())
	if err != nil {
		return nil, err
	}
	return scanStatementEntries(rows)
}

func (r *statementEntryRepository) ByStatus(ctx context.Context, status domain.EntryStatus) ([]*domain.StatementEntry, error) {
	rows, err := r.db.QueryContext(ctx, entrySelect+` WHERE status = ? ORDER BY occurred_at, id`, string(status))
	if err != nil {
		return nil, err
	}
	return scanStatementEntries(rows)
}

func (r *statementEntryRepository) ExistsByBatchAndExternalID(ctx context.Context, batchID uuid.UUID, externalID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM statement_entries WHERE batch_id = ? AND external_id = ?`,
		batchID.String(), externalID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

const entrySelect = `
	SELECT id, batch_id, external_id, payee, memo, amount, currency, occurred_at,
		status, suggested_account_id, transaction_id, metadata, created_at, updated_at
	FROM statement_entries`

func scanStatementEntry(row accountScanner) (*domain.StatementEntry, error) {
	var (
		id, batchID, externalID, memo, amountText, currency, occurredAt, status, metadataJSON string
		payee                                                                                  sql.NullString
		suggestedAccountID, transactionID                                                       sql.NullString
		createdAt, updatedAt                                                                    string
	)
	err := row.Scan(&id, &batchID, &externalID, &payee, &memo, &amountText, &currency, &occurredAt,
		&status, &suggestedAccountID, &transactionID, &metadataJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrStatementEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountText)
	if err != nil {
		return nil, err
	}

	entry := &domain.StatementEntry{
		ID:      uuid.MustParse(id),
		BatchID: uuid.MustParse(batchID),
		Memo:    memo,
		Amount:  domain.NewMoney(amount, currency),
		Status:  domain.EntryStatus(status),
	}
	if externalID != "" {
		eid := externalID
		entry.ExternalID = &eid
	}
	if payee.Valid {
		entry.Payee = payee.String
	}
	entry.OccurredAt, _ = parseTime(occurredAt)
	entry.CreatedAt, _ = parseTime(createdAt)
	entry.UpdatedAt, _ = parseTime(updatedAt)
	if suggestedAccountID.Valid {
		aid := uuid.MustParse(suggestedAccountID.String)
		entry.SuggestedAccountID = &aid
	}
	if transactionID.Valid {
		tid := uuid.MustParse(transactionID.String)
		entry.TransactionID = &tid
	}
	metadata := map[string]any{}
	_ = json.Unmarshal([]byte(metadataJSON), &metadata)
	entry.Metadata = metadata
	return entry, nil
}

func scanStatementEntries(rows *sql.Rows) ([]*domain.StatementEntry, error) {
	defer rows.Close()
	var out []*domain.StatementEntry
	for rows.Next() {
		entry, err := scanStatementEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func mustMarshal(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
