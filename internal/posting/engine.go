// Package posting converts matched statement entries into balanced,
// double-entry Transactions.
package posting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finlite/internal/domain"
)

// AccountFinder is the narrow account-lookup capability the posting engine
// needs. It depends on this instead of the full domain.AccountRepository so
// the engine's test doubles and its production wiring only have to satisfy
// two methods, per the interface-segregation guidance the rest of this
// codebase follows.
type AccountFinder interface {
	ByCode(ctx context.Context, code string) (*domain.Account, error)
	ByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// TransactionAdder is the narrow write capability the posting engine needs
// from the transaction store.
type TransactionAdder interface {
	Add(ctx context.Context, txn *domain.Transaction) error
}

// EntrySource selects and mutates statement entries. It is satisfied by the
// statement-entry repository; kept narrow for the same reason as
// AccountFinder above.
type EntrySource interface {
	ByBatch(ctx context.Context, batchID uuid.UUID) ([]*domain.StatementEntry, error)
	ByStatus(ctx context.Context, status domain.EntryStatus) ([]*domain.StatementEntry, error)
	Update(ctx context.Context, entry *domain.StatementEntry) error
}

// EntryFailure records one entry that could not be posted, without
// aborting the rest of the batch.
type EntryFailure struct {
	EntryID uuid.UUID
	Message string
}

// PostedEntry pairs a posted statement entry with the transaction it
// became.
type PostedEntry struct {
	EntryID       uuid.UUID
	TransactionID uuid.UUID
}

// PostResult is the outcome of a post_pending run.
type PostResult struct {
	Posted  []PostedEntry
	Skipped []uuid.UUID
	Errors  []EntryFailure
}

// Engine runs the posting step of the pipeline.
type Engine struct {
	Accounts     AccountFinder
	Transactions TransactionAdder
	Entries      EntrySource
}

// NewEngine constructs a posting Engine.
func NewEngine(accounts AccountFinder, transactions TransactionAdder, entries EntrySource) *Engine {
	return &Engine{Accounts: accounts, Transactions: transactions, Entries: entries}
}

// PostPending converts MATCHED entries (optionally scoped to a single
// batch) into balanced transactions against sourceAccountCode. Entries
// without a suggested account are counted as skipped rather than failed.
// A per-entry failure (e.g. a zero-amount entry, which cannot form a valid
// posting) is recorded in the result and does not abort the rest of
// the batch. dryRun performs every lookup and decision but persists
// nothing.
func (e *Engine) PostPending(ctx context.Context, batchID *uuid.UUID, sourceAccountCode string, dryRun bool) (*PostResult, error) {
	source, err := e.Accounts.ByCode(ctx, sourceAccountCode)
	if err != nil {
		return nil, err
	}

	entries, err := e.selectEntries(ctx, batchID)
	if err != nil {
		return nil, err
	}

	result := &PostResult{}
	for _, entry := range entries {
		if entry.SuggestedAccountID == nil {
			result.Skipped = append(result.Skipped, entry.ID)
			continue
		}

		txn, err := e.buildTransaction(entry, source, *entry.SuggestedAccountID)
		if err != nil {
			result.Errors = append(result.Errors, EntryFailure{EntryID: entry.ID, Message: err.Error()})
			continue
		}

		if dryRun {
			result.Posted = append(result.Posted, PostedEntry{EntryID: entry.ID, TransactionID: txn.ID})
			continue
		}

		if err := e.Transactions.Add(ctx, txn); err != nil {
			result.Errors = append(result.Errors, EntryFailure{EntryID: entry.ID, Message: err.Error()})
			continue
		}
		if err := entry.Post(txn.ID); err != nil {
			result.Errors = append(result.Errors, EntryFailure{EntryID: entry.ID, Message: err.Error()})
			continue
		}
		if err := e.Entries.Update(ctx, entry); err != nil {
			result.Errors = append(result.Errors, EntryFailure{EntryID: entry.ID, Message: err.Error()})
			continue
		}
		result.Posted = append(result.Posted, PostedEntry{EntryID: entry.ID, TransactionID: txn.ID})
	}
	return result, nil
}

func (e *Engine) selectEntries(ctx context.Context, batchID *uuid.UUID) ([]*domain.StatementEntry, error) {
	if batchID != nil {
		all, err := e.Entries.ByBatch(ctx, *batchID)
		if err != nil {
			return nil, err
		}
		matched := make([]*domain.StatementEntry, 0, len(all))
		for _, entry := range all {
			if entry.Status == domain.EntryMatched {
				matched = append(matched, entry)
			}
		}
		return matched, nil
	}
	return e.Entries.ByStatus(ctx, domain.EntryMatched)
}

// buildTransaction constructs the two-posting transaction for a single
// entry. The source (statement) account keeps the sign of the statement
// amount (positive for a deposit, negative for a withdrawal); the
// rule-suggested account always receives the exact inverse, making it the
// counterweight. A salary deposit of +5000 therefore posts
// Assets:Checking +5000 / Income:Salary -5000, not the other way around.
func (e *Engine) buildTransaction(entry *domain.StatementEntry, source *domain.Account, targetAccountID uuid.UUID) (*domain.Transaction, error) {
	sourceLeg := domain.Posting{AccountID: source.ID, Amount: entry.Amount}
	target := domain.Posting{AccountID: targetAccountID, Amount: entry.Amount.Neg()}

	description := entry.Memo
	if description == "" {
		description = entry.Payee
	}

	tags := []string{"imported"}
	if entry.BatchID != uuid.Nil {
		tags = append(tags, fmt.Sprintf("batch:%s", entry.BatchID))
	}

	date := entry.OccurredAt.UTC().Truncate(24 * time.Hour)

	return domain.NewTransaction(
		date,
		description,
		[]domain.Posting{sourceLeg, target},
		tags,
		nil,
		&entry.BatchID,
	)
}
