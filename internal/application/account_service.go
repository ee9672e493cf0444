// Package application wires the domain and infrastructure packages into
// the use cases finlite exposes to its collaborators (CLI, HTTP surface):
// chart-of-accounts management, statement ingestion, rule application,
// posting, and reporting. Every service opens its own Unit of Work
// session per call and commits or rolls back before returning, so callers
// never have to manage transaction lifetime themselves.
package application

import (
	"context"

	"github.com/google/uuid"

	"finlite/internal/domain"
	"finlite/internal/infrastructure/database/repositories"
)

// AccountService is the chart-of-accounts application service (C2):
// creation, renaming, lifecycle, and lookups, each inside its own Unit of
// Work session.
type AccountService struct {
	uow *repositories.UnitOfWork
}

// NewAccountService constructs an AccountService over uow.
func NewAccountService(uow *repositories.UnitOfWork) *AccountService {
	return &AccountService{uow: uow}
}

// Create adds a new account. Fails with ErrDuplicateAccount if code is
// already taken, ErrAccountNotFound if parentID is set but doesn't exist,
// and ErrParentArchived if the parent is archived.
func (s *AccountService) Create(ctx context.Context, code, name string, accountType domain.AccountType, currency string, parentID *uuid.UUID) (*domain.Account, error) {
	session, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Rollback()

	if parentID != nil {
		parent, err := session.Accounts.ByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if !parent.IsActive {
			return nil, domain.ErrParentArchived
		}
	}

	account, err := domain.NewAccount(code, name, accountType, currency, parentID)
	if err != nil {
		return nil, err
	}
	if err := session.Accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	if err := session.Commit(); err != nil {
		return nil, err
	}
	return account, nil
}

// Rename updates an account's display name.
func (s *AccountService) Rename(ctx context.Context, id uuid.UUID, newName string) error {
	return s.mutate(ctx, id, func(a *domain.Account) { a.Rename(newName) })
}

// Archive soft-deletes an account.
func (s *AccountService) Archive(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, id, func(a *domain.Account) { a.Archive() })
}

// Reactivate clears an account's soft-delete flag.
func (s *AccountService) Reactivate(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, id, func(a *domain.Account) { a.Reactivate() })
}

func (s *AccountService) mutate(ctx context.Context, id uuid.UUID, apply func(*domain.Account)) error {
	session, err := s.uow.Begin(ctx)
	if err != nil {
		return err
	}
	defer session.Rollback()

	account, err := session.Accounts.ByID(ctx, id)
	if err != nil {
		return err
	}
	apply(account)
	if err := session.Accounts.Update(ctx, account); err != nil {
		return err
	}
	return session.Commit()
}

// Delete hard-deletes an account; fails with ErrAccountInUse if any
// posting still references it.
func (s *AccountService) Delete(ctx context.Context, id uuid.UUID) error {
	session, err := s.uow.Begin(ctx)
	if err != nil {
		return err
	}
	defer session.Rollback()

	if err := session.Accounts.Delete(ctx, id); err != nil {
		return err
	}
	return session.Commit()
}

// ByID looks up an account by id.
func (s *AccountService) ByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	session, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Rollback()
	return session.Accounts.ByID(ctx, id)
}

// ByCode looks up an account by its hierarchical code.
func (s *AccountService) ByCode(ctx context.Context, code string) (*domain.Account, error) {
	session, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Rollback()
	return session.Accounts.ByCode(ctx, code)
}

// ByType lists accounts of one type.
func (s *AccountService) ByType(ctx context.Context, accountType domain.AccountType, includeArchived bool) ([]*domain.Account, error) {
	session, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Rollback()
	return session.Accounts.ByType(ctx, accountType, includeArchived)
}

// ChildrenOf lists the direct children of an account.
func (s *AccountService) ChildrenOf(ctx context.Context, parentID uuid.UUID) ([]*domain.Account, error) {
	session, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Rollback()
	return session.Accounts.ChildrenOf(ctx, parentID)
}

// Roots lists every top-level account (no parent).
func (s *AccountService) Roots(ctx context.Context, includeArchived bool) ([]*domain.Account, error) {
	session, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Rollback()
	return session.Accounts.Roots(ctx, includeArchived)
}

// ListAll lists the entire chart of accounts.
func (s *AccountService) ListAll(ctx context.Context, includeArchived bool) ([]*domain.Account, error) {
	session, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Rollback()
	return session.Accounts.ListAll(ctx, includeArchived)
}
