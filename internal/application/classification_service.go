package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"finlite/internal/domain"
	"finlite/internal/events"
	"finlite/internal/infrastructure/database/repositories"
	"finlite/internal/rules"
)

// MatchOutcome describes what happened to one IMPORTED entry during an
// apply run.
type MatchOutcome struct {
	EntryID       uuid.UUID
	Matched       bool
	RulePattern   string
	RuleAccount   string
	AccountExists bool
}

// ApplyResult is the outcome of one rule-application pass.
type ApplyResult struct {
	Outcomes []MatchOutcome
	Applied  bool
}

// ClassificationService runs the rule engine (C5): loading the rules
// document and matching it against IMPORTED entries.
type ClassificationService struct {
	uow     *repositories.UnitOfWork
	bus     *events.Bus
	dataDir string
}

// NewClassificationService constructs a ClassificationService. dataDir is
// the directory the rules JSON document lives under (see rules.Load).
func NewClassificationService(uow *repositories.UnitOfWork, bus *events.Bus, dataDir string) *ClassificationService {
	return &ClassificationService{uow: uow, bus: bus, dataDir: dataDir}
}

// Apply runs the matching protocol from spec.md §4.5. With dryRun, no
// writes happen and the session is rolled back; with autoApply, matches
// are persisted and StatementMatched is published for each. Calling with
// both false only returns diagnostics (the first step's match set)
// without touching storage, matching the spec's three-mode behavior.
func (s *ClassificationService) Apply(ctx context.Context, batchID *uuid.UUID, dryRun, autoApply bool) (*ApplyResult, error) {
	ruleSet, err := rules.Load(s.dataDir)
	if err != nil {
		return nil, err
	}
	if len(ruleSet) == 0 {
		return &ApplyResult{}, nil
	}

	session, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Rollback()

	entries, err := s.selectImported(ctx, session, batchID)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{}
	var matchedEntries []*domain.StatementEntry
	for _, entry := range entries {
		kind := domain.RuleIncome
		if entry.Amount.IsNegative() {
			kind = domain.RuleExpense
		}
		amount := entry.Amount.Decimal()
		occurredAt := entry.OccurredAt
		rule, ok := rules.Match(ruleSet, entry.Memo, kind, &amount, &occurredAt)
		if !ok {
			result.Outcomes = append(result.Outcomes, MatchOutcome{EntryID: entry.ID, Matched: false})
			continue
		}

		account, err := session.Accounts.ByCode(ctx, rule.Account)
		outcome := MatchOutcome{EntryID: entry.ID, Matched: true, RulePattern: rule.Pattern, RuleAccount: rule.Account}
		if err != nil {
			outcome.AccountExists = false
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}
		outcome.AccountExists = true
		result.Outcomes = append(result.Outcomes, outcome)

		if dryRun || !autoApply {
			continue
		}
		if err := entry.Match(account.ID); err != nil {
			return nil, err
		}
		if entry.Metadata == nil {
			entry.Metadata = map[string]any{}
		}
		entry.Metadata["rule_pattern"] = rule.Pattern
		entry.Metadata["rule_account"] = rule.Account
		matchedEntries = append(matchedEntries, entry)
	}

	if dryRun || !autoApply {
		return result, nil
	}

	for _, entry := range matchedEntries {
		if err := session.StatementEntries.Update(ctx, entry); err != nil {
			return nil, err
		}
	}
	if err := session.Commit(); err != nil {
		return nil, err
	}
	result.Applied = true

	for _, entry := range matchedEntries {
		s.bus.Publish(events.StatementMatched{
			EntryID: entry.ID, AccountID: *entry.SuggestedAccountID, OccurredAt: time.Now().UTC(),
		})
	}
	return result, nil
}

func (s *ClassificationService) selectImported(ctx context.Context, session *repositories.Session, batchID *uuid.UUID) ([]*domain.StatementEntry, error) {
	if batchID != nil {
		all, err := session.StatementEntries.ByBatch(ctx, *batchID)
		if err != nil {
			return nil, err
		}
		imported := make([]*domain.StatementEntry, 0, len(all))
		for _, e := range all {
			if e.Status == domain.EntryImported {
				imported = append(imported, e)
			}
		}
		return imported, nil
	}
	return session.StatementEntries.ByStatus(ctx, domain.EntryImported)
}
