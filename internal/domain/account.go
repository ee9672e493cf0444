package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccountType is one of the five fundamental double-entry account families.
type AccountType string

const (
	AccountAsset     AccountType = "ASSET"
	AccountLiability AccountType = "LIABILITY"
	AccountEquity    AccountType = "EQUITY"
	AccountIncome    AccountType = "INCOME"
	AccountExpense   AccountType = "EXPENSE"
)

// accountTypeRoots maps the first ":"-separated segment of an account code
// to the type family it must belong to. Hierarchy resolution is purely by
// code parsing; parent_id is a denormalization kept consistent at write time.
var accountTypeRoots = map[string]AccountType{
	"assets":      AccountAsset,
	"liabilities": AccountLiability,
	"equity":      AccountEquity,
	"income":      AccountIncome,
	"expenses":    AccountExpense,
}

// RootTypeFamily returns the account type implied by the root segment of a
// hierarchical code (e.g. "Assets:Bank:Checking" -> AccountAsset), and false
// if the root segment does not match any known family.
func RootTypeFamily(code string) (AccountType, bool) {
	root := code
	if idx := strings.Index(code, ":"); idx >= 0 {
		root = code[:idx]
	}
	t, ok := accountTypeRoots[strings.ToLower(root)]
	return t, ok
}

// Account is the chart-of-accounts aggregate root.
type Account struct {
	ID        uuid.UUID
	Code      string
	Name      string
	Type      AccountType
	Currency  string
	ParentID  *uuid.UUID
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount constructs an Account, validating that its type agrees with the
// type family implied by its code's root segment. It does not check
// uniqueness or parent existence/archival status — those are repository-level
// concerns enforced by the chart-of-accounts service.
func NewAccount(code, name string, accountType AccountType, currency string, parentID *uuid.UUID) (*Account, error) {
	if family, ok := RootTypeFamily(code); ok && family != accountType {
		return nil, ErrInvalidAccountType
	}
	now := time.Now().UTC()
	return &Account{
		ID:        uuid.New(),
		Code:      code,
		Name:      name,
		Type:      accountType,
		Currency:  strings.ToUpper(currency),
		ParentID:  parentID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Rename updates the display name.
func (a *Account) Rename(newName string) {
	a.Name = newName
	a.UpdatedAt = time.Now().UTC()
}

// Archive soft-deletes the account.
func (a *Account) Archive() {
	a.IsActive = false
	a.UpdatedAt = time.Now().UTC()
}

// Reactivate clears the soft-delete flag.
func (a *Account) Reactivate() {
	a.IsActive = true
	a.UpdatedAt = time.Now().UTC()
}

// AccountRepository is the full persistence capability for the chart of
// accounts, owned by a Unit of Work. Components that only need a narrow
// slice of this surface (e.g. the rule and posting engines) declare their
// own minimal interface rather than depending on this one (see posting.AccountFinder).
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	ByID(ctx context.Context, id uuid.UUID) (*Account, error)
	ByCode(ctx context.Context, code string) (*Account, error)
	ByType(ctx context.Context, accountType AccountType, includeArchived bool) ([]*Account, error)
	ChildrenOf(ctx context.Context, parentID uuid.UUID) ([]*Account, error)
	Roots(ctx context.Context, includeArchived bool) ([]*Account, error)
	ListAll(ctx context.Context, includeArchived bool) ([]*Account, error)
	IsReferencedByPosting(ctx context.Context, id uuid.UUID) (bool, error)
}
