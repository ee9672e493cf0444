package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Posting is one immutable leg of a Transaction.
type Posting struct {
	AccountID uuid.UUID
	Amount    Money
	Notes     *string
}

// Transaction is the double-entry aggregate root: an ordered set of postings
// that must sum to zero per currency.
type Transaction struct {
	ID            uuid.UUID
	Date          time.Time
	Description   string
	Postings      []Posting
	Tags          []string
	Notes         *string
	ImportBatchID *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewTransaction constructs a Transaction, running the balance check
// immediately. Tags are normalized to lowercase, trimmed, and deduplicated
// while preserving first occurrence.
func NewTransaction(date time.Time, description string, postings []Posting, tags []string, notes *string, importBatchID *uuid.UUID) (*Transaction, error) {
	if err := validateBalance(postings); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Transaction{
		ID:            uuid.New(),
		Date:          date,
		Description:   description,
		Postings:      postings,
		Tags:          normalizeTags(tags),
		Notes:         notes,
		ImportBatchID: importBatchID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ReplacePostings swaps the entire posting set, re-running the balance
// check. Postings are never patched individually.
func (t *Transaction) ReplacePostings(postings []Posting) error {
	if err := validateBalance(postings); err != nil {
		return err
	}
	t.Postings = postings
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// IsBalanced reports whether the transaction currently satisfies the
// balance invariant. A correctly constructed transaction always does; this
// exists as an integrity probe.
func (t *Transaction) IsBalanced() bool {
	return validateBalance(t.Postings) == nil
}

// TotalByCurrency sums postings per currency. For a valid transaction every
// key maps to zero.
func (t *Transaction) TotalByCurrency() map[string]Money {
	totals := map[string]Money{}
	for _, p := range t.Postings {
		cur := p.Amount.Currency()
		if existing, ok := totals[cur]; ok {
			sum, _ := existing.Add(p.Amount)
			totals[cur] = sum
		} else {
			totals[cur] = p.Amount
		}
	}
	return totals
}

func validateBalance(postings []Posting) error {
	if len(postings) < 2 {
		return ErrTooFewPostings
	}
	currency := postings[0].Amount.Currency()
	sum := ZeroMoney(currency)
	for _, p := range postings {
		if p.Amount.IsZero() {
			return ErrZeroPosting
		}
		if p.Amount.Currency() != currency {
			return ErrMixedCurrencies
		}
		s, err := sum.Add(p.Amount)
		if err != nil {
			return ErrMixedCurrencies
		}
		sum = s
	}
	if !sum.IsZero() {
		return ErrUnbalancedTxn
	}
	return nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		norm := strings.ToLower(strings.TrimSpace(t))
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}

// TransactionRepository is the persistence capability for transactions.
type TransactionRepository interface {
	Add(ctx context.Context, txn *Transaction) error
	ByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ByDateRange(ctx context.Context, from, to time.Time, accountID *uuid.UUID) ([]*Transaction, error)
	ByImportBatch(ctx context.Context, batchID uuid.UUID) ([]*Transaction, error)
}
