package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"finlite/internal/events"
	"finlite/internal/infrastructure/database/repositories"
	"finlite/internal/posting"
)

// PostingService wraps the posting engine (C6) in a Unit of Work session
// and publishes StatementPosted for every entry it turns into a
// transaction.
type PostingService struct {
	uow *repositories.UnitOfWork
	bus *events.Bus
}

// NewPostingService constructs a PostingService.
func NewPostingService(uow *repositories.UnitOfWork, bus *events.Bus) *PostingService {
	return &PostingService{uow: uow, bus: bus}
}

// PostPending converts MATCHED entries into balanced transactions against
// sourceAccountCode, within a single Unit of Work session. dryRun performs
// every lookup and decision but persists nothing.
func (s *PostingService) PostPending(ctx context.Context, batchID *uuid.UUID, sourceAccountCode string, dryRun bool) (*posting.PostResult, error) {
	session, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Rollback()

	engine := posting.NewEngine(session.Accounts, session.Transactions, session.StatementEntries)
	result, err := engine.PostPending(ctx, batchID, sourceAccountCode, dryRun)
	if err != nil {
		return nil, err
	}

	if dryRun {
		return result, nil
	}
	if err := session.Commit(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, posted := range result.Posted {
		s.bus.Publish(events.StatementPosted{EntryID: posted.EntryID, TransactionID: posted.TransactionID, OccurredAt: now})
	}
	return result, nil
}
