package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"finlite/internal/domain"
)

type accountRepository struct {
	db dbtx
}

// NewAccountRepository constructs a domain.AccountRepository backed by db,
// which may be a *sql.DB for standalone reads or a *sql.Tx held open by a
// Unit of Work session.
func NewAccountRepository(db dbtx) domain.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, code, name, type, currency, parent_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID.String(), account.Code, account.Name, string(account.Type), account.Currency,
		nullableUUID(account.ParentID), account.IsActive, formatTime(account.CreatedAt), formatTime(account.UpdatedAt),
	)
	if isUniqueConstraintErr(err) {
		return domain.ErrDuplicateAccount
	}
	return err
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, parent_id = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		account.Name, nullableUUID(account.ParentID), account.IsActive, formatTime(account.UpdatedAt), account.ID.String(),
	)
	return err
}

func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	referenced, err := r.IsReferencedByPosting(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return domain.ErrAccountInUse
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id.String())
	return err
}

func (r *accountRepository) ByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, code, name, type, currency, parent_id, is_active, created_at, updated_at
		FROM accounts WHERE id = ?`, id.String())
	return scanAccount(row)
}

func (r *accountRepository) ByCode(ctx context.Context, code string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, code, name, type, currency, parent_id, is_active, created_at, updated_at
		FROM accounts WHERE code = ?`, code)
	return scanAccount(row)
}

func (r *accountRepository) ByType(ctx context.Context, accountType domain.AccountType, includeArchived bool) ([]*domain.Account, error) {
	query := `
		SELECT id, code, name, type, currency, parent_id, is_active, created_at, updated_at
		FROM accounts WHERE type = ?`
	if !includeArchived {
		query += ` AND is_active = 1`
	}
	rows, err := r.db.QueryContext(ctx, query, string(accountType))
	if err != nil {
		return nil, err
	}
	return scanAccounts(rows)
}

func (r *accountRepository) ChildrenOf(ctx context.Context, parentID uuid.UUID) ([]*domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, name, type, currency, parent_id, is_active, created_at, updated_at
		FROM accounts WHERE parent_id = ?`, parentID.String())
	if err != nil {
		return nil, err
	}
	return scanAccounts(rows)
}

func (r *accountRepository) Roots(ctx context.Context, includeArchived bool) ([]*domain.Account, error) {
	query := `
		SELECT id, code, name, type, currency, parent_id, is_active, created_at, updated_at
		FROM accounts WHERE parent_id IS NULL`
	if !includeArchived {
		query += ` AND is_active = 1`
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanAccounts(rows)
}

func (r *accountRepository) ListAll(ctx context.Context, includeArchived bool) ([]*domain.Account, error) {
	query := `SELECT id, code, name, type, currency, parent_id, is_active, created_at, updated_at FROM accounts`
	if !includeArchived {
		query += ` WHERE is_active = 1`
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanAccounts(rows)
}

func (r *accountRepository) IsReferencedByPosting(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM postings WHERE account_id = ?`, id.String()).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type accountScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row accountScanner) (*domain.Account, error) {
	var (
		id, code, name, accType, currency string
		parentID                         sql.NullString
		isActive                         bool
		createdAt, updatedAt             string
	)
	err := row.Scan(&id, &code, &name, &accType, &currency, &parentID, &isActive, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	account := &domain.Account{
		ID:       uuid.MustParse(id),
		Code:     code,
		Name:     name,
		Type:     domain.AccountType(accType),
		Currency: currency,
		IsActive: isActive,
	}
	if parentID.Valid {
		pid := uuid.MustParse(parentID.String)
		account.ParentID = &pid
	}
	account.CreatedAt, _ = parseTime(createdAt)
	account.UpdatedAt, _ = parseTime(updatedAt)
	return account, nil
}

func scanAccounts(rows *sql.Rows) ([]*domain.Account, error) {
	defer rows.Close()
	var out []*domain.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
