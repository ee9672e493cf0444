package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finlite/internal/domain"
)

type transactionRepository struct {
	db dbtx
}

// NewTransactionRepository constructs a domain.TransactionRepository
// backed by db.
func NewTransactionRepository(db dbtx) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Add(ctx context.Context, txn *domain.Transaction) error {
	tagsJSON, err := json.Marshal(txn.Tags)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, date, description, tags, notes, import_batch_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID.String(), txn.Date.UTC().Format("2006-01-02"), txn.Description, string(tagsJSON),
		nullableString(txn.Notes), nullableUUID(txn.ImportBatchID), formatTime(txn.CreatedAt), formatTime(txn.UpdatedAt),
	)
	if err != nil {
		return err
	}

	for i, p := range txn.Postings {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO postings (transaction_id, ordinal, account_id, amount, currency, notes)
			VALUES (?, ?, ?, ?, ?, ?)`,
			txn.ID.String(), i, p.AccountID.String(), p.Amount.StringFixed(domain.MoneyScale), p.Amount.Currency(), nullableString(p.Notes),
		)
		if err != nil {
			return err
		}
	}

	// Flip finalized only once every leg is in place; the balance trigger
	// fires off this update, not off the individual posting inserts.
	_, err = r.db.ExecContext(ctx, `UPDATE transactions SET finalized = 1 WHERE id = ?`, txn.ID.String())
	return err
}

func (r *transactionRepository) ByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, description, tags, notes, import_batch_id, created_at, updated_at
		FROM transactions WHERE id = ?`, id.String())
	txn, err := scanTransaction(row)
	if err != nil {
		return nil, err
	}
	postings, err := r.postingsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	txn.Postings = postings
	return txn, nil
}

func (r *transactionRepository) ByDateRange(ctx context.Context, from, to time.Time, accountID *uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT DISTINCT t.id, t.date, t.description, t.tags, t.notes, t.import_batch_id, t.created_at, t.updated_at
		FROM transactions t`
	args := []any{}
	if accountID != nil {
		query += ` JOIN postings p ON p.transaction_id = t.id WHERE t.date >= ? AND t.date <= ? AND p.account_id = ?`
		args = append(args, from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02"), accountID.String())
	} else {
		query += ` WHERE t.date >= ? AND t.date <= ?`
		args = append(args, from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02"))
	}
	query += ` ORDER BY t.date, t.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r.scanTransactionsWithPostings(ctx, rows)
}

func (r *transactionRepository) ByImportBatch(ctx context.Context, batchID uuid.UUID) ([]*domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, description, tags, notes, import_batch_id, created_at, updated_at
		FROM transactions WHERE import_batch_id = ? ORDER BY date, id`, batchID.String())
	if err != nil {
		return nil, err
	}
	return r.scanTransactionsWithPostings(ctx, rows)
}

func (r *transactionRepository) scanTransactionsWithPostings(ctx context.Context, rows *sql.Rows) ([]*domain.Transaction, error) {
	defer rows.Close()
	var out []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, txn := range out {
		postings, err := r.postingsFor(ctx, txn.ID)
		if err != nil {
			return nil, err
		}
		txn.Postings = postings
	}
	return out, nil
}

func (r *transactionRepository) postingsFor(ctx context.Context, transactionID uuid.UUID) ([]domain.Posting, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT account_id, amount, currency, notes
		FROM postings WHERE transaction_id = ? ORDER BY ordinal`, transactionID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postings []domain.Posting
	for rows.Next() {
		var accountID, amountText, currency string
		var notes sql.NullString
		if err := rows.Scan(&accountID, &amountText, &currency, &notes); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(amountText)
		if err != nil {
			return nil, err
		}
		posting := domain.Posting{
			AccountID: uuid.MustParse(accountID),
			Amount:    domain.NewMoney(amount, currency),
		}
		if notes.Valid {
			n := notes.String
			posting.Notes = &n
		}
		postings = append(postings, posting)
	}
	return postings, rows.Err()
}

func scanTransaction(row accountScanner) (*domain.Transaction, error) {
	var (
		id, dateStr, description, tagsJSON string
		notes, importBatchID               sql.NullString
		createdAt, updatedAt                string
	)
	err := row.Scan(&id, &dateStr, &description, &tagsJSON, &notes, &importBatchID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	var tags []string
	_ = json.Unmarshal([]byte(tagsJSON), &tags)

	txn := &domain.Transaction{
		ID:          uuid.MustParse(id),
		Description: description,
		Tags:        tags,
	}
	txn.Date, _ = time.Parse("2006-01-02", dateStr)
	if notes.Valid {
		n := notes.String
		txn.Notes = &n
	}
	if importBatchID.Valid {
		bid := uuid.MustParse(importBatchID.String)
		txn.ImportBatchID = &bid
	}
	txn.CreatedAt, _ = parseTime(createdAt)
	txn.UpdatedAt, _ = parseTime(updatedAt)
	return txn, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
