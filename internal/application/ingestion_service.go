package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finlite/internal/domain"
	"finlite/internal/events"
	"finlite/internal/infrastructure/database/repositories"
	"finlite/internal/ingest"
)

// ImportRequest is everything the ingestion service needs to run one
// import: the raw file bytes, which source format to parse them as, the
// currency to assume where a row doesn't carry its own, and an optional
// hint recorded on every resulting entry's metadata (e.g. a suggested
// source account for the posting step).
type ImportRequest struct {
	Source          domain.BatchSource
	Filename        string
	Data            []byte
	DefaultCurrency string
	AccountHint     *string
}

// IngestionService runs the statement-ingestion pipeline (C4): hash the
// file for idempotency, parse it by source format, and persist a batch
// plus its entries as a single Unit of Work.
type IngestionService struct {
	uow *repositories.UnitOfWork
	bus *events.Bus
}

// NewIngestionService constructs an IngestionService.
func NewIngestionService(uow *repositories.UnitOfWork, bus *events.Bus) *IngestionService {
	return &IngestionService{uow: uow, bus: bus}
}

// Import runs the full protocol from spec.md §4.4: hash, dedupe, parse,
// persist, and either complete or fail the batch. A parse error never
// leaves a partially-imported batch — the batch is either never persisted
// (hash collision, caught before it's written) or transitions straight to
// FAILED with no entries attached.
func (s *IngestionService) Import(ctx context.Context, req ImportRequest) (*domain.ImportBatch, error) {
	sha256, err := ingest.SHA256(bytes.NewReader(req.Data))
	if err != nil {
		return nil, err
	}

	session, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Rollback()

	existing, err := session.ImportBatches.ByFileSHA256(ctx, sha256)
	if err == nil {
		return nil, &domain.DuplicateImportError{ExistingBatchID: existing.ID.String()}
	}
	if !errors.Is(err, domain.ErrImportBatchNotFound) {
		return nil, err
	}

	batch := domain.NewImportBatch(req.Source, req.Filename, sha256, map[string]any{})
	if err := session.ImportBatches.Add(ctx, batch); err != nil {
		return nil, err
	}

	entries, parseErr := s.parse(req)
	if parseErr != nil {
		_ = batch.Fail(parseErr.Error())
		if err := session.ImportBatches.Update(ctx, batch); err != nil {
			return nil, err
		}
		if err := session.Commit(); err != nil {
			return nil, err
		}
		s.bus.Publish(events.StatementImportFailed{
			BatchID: batch.ID, Filename: req.Filename, Reason: parseErr.Error(), OccurredAt: time.Now().UTC(),
		})
		return batch, parseErr
	}

	for _, entry := range entries {
		entry.BatchID = batch.ID
		if err := session.StatementEntries.Add(ctx, entry); err != nil {
			_ = session.Rollback()
			_ = batch.Fail(err.Error())
			if failSession, beginErr := s.uow.Begin(ctx); beginErr == nil {
				if addErr := failSession.ImportBatches.Add(ctx, batch); addErr == nil {
					_ = failSession.Commit()
				} else {
					_ = failSession.Rollback()
				}
			}
			s.bus.Publish(events.StatementImportFailed{
				BatchID: batch.ID, Filename: req.Filename, Reason: err.Error(), OccurredAt: time.Now().UTC(),
			})
			return batch, err
		}
	}

	if err := batch.Complete(len(entries)); err != nil {
		return nil, err
	}
	if err := session.ImportBatches.Update(ctx, batch); err != nil {
		return nil, err
	}
	if err := session.Commit(); err != nil {
		return nil, err
	}

	s.bus.Publish(events.StatementImported{
		BatchID: batch.ID, Filename: req.Filename, EntryCount: len(entries), OccurredAt: time.Now().UTC(),
	})
	return batch, nil
}

// parse dispatches to the source-specific parser and turns each
// ingest.ParsedEntry into a domain.StatementEntry, attaching the import's
// account hint under metadata if one was given.
func (s *IngestionService) parse(req ImportRequest) ([]*domain.StatementEntry, error) {
	var parsed []ingest.ParsedEntry
	var err error

	switch req.Source {
	case domain.SourceNubankCSV:
		parsed, err = ingest.ParseNubankCSV(bytes.NewReader(ingest.StripBOM(req.Data)), req.Filename)
	case domain.SourceOFX:
		decoded := ingest.DecodeText(req.Data)
		parsed, err = ingest.ParseOFX(bytes.NewReader([]byte(decoded)), req.Filename)
	default:
		return nil, fmt.Errorf("unsupported import source %q", req.Source)
	}
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.StatementEntry, 0, len(parsed))
	for _, p := range parsed {
		currency := p.Currency
		if currency == "" {
			currency = req.DefaultCurrency
		}
		amount, err := domain.ParseMoney(p.AmountText, currency)
		if err != nil {
			return nil, fmt.Errorf("row %q: %w", p.ExternalID, err)
		}
		metadata := map[string]any{}
		if req.AccountHint != nil {
			metadata["account_hint"] = *req.AccountHint
		}
		externalID := p.ExternalID
		entry := domain.NewStatementEntry(uuid.Nil, &externalID, p.Payee, p.Memo, amount, p.OccurredAt, metadata)
		entries = append(entries, entry)
	}
	return entries, nil
}
