package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"finlite/internal/domain"
)

// accountTTL is how long a cached account lookup stays valid. Accounts
// change rarely (rename, archive) compared to how often the posting and
// rule engines resolve a code during a large import, so a short TTL is
// enough to absorb the hot path without risking a long-lived stale read
// after an edit.
const accountTTL = 5 * time.Minute

type cachedAccount struct {
	ID        uuid.UUID        `json:"id"`
	Code      string           `json:"code"`
	Name      string           `json:"name"`
	Type      domain.AccountType `json:"type"`
	Currency  string           `json:"currency"`
	ParentID  *uuid.UUID       `json:"parent_id,omitempty"`
	IsActive  bool             `json:"is_active"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// AccountCache wraps a domain.AccountRepository with a read-through Redis
// cache on ByCode, the lookup the rule and posting engines perform once
// per statement entry during a batch import. Every other method passes
// straight through, and every write also invalidates the cached entry so
// a rename or archive is never served stale.
type AccountCache struct {
	inner  domain.AccountRepository
	client RedisClient
}

// NewAccountCache wraps inner with a Redis-backed cache. A nil client
// makes every method a direct passthrough, so the cache can be wired
// unconditionally and simply do nothing when Redis isn't configured.
func NewAccountCache(inner domain.AccountRepository, client RedisClient) *AccountCache {
	return &AccountCache{inner: inner, client: client}
}

func (c *AccountCache) ByCode(ctx context.Context, code string) (*domain.Account, error) {
	if c.client == nil {
		return c.inner.ByCode(ctx, code)
	}

	key := cacheKey(code)
	if raw, err := c.client.Get(ctx, key).Result(); err == nil {
		var cached cachedAccount
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return cached.toAccount(), nil
		}
	}

	account, err := c.inner.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	c.store(ctx, account)
	return account, nil
}

func (c *AccountCache) Create(ctx context.Context, account *domain.Account) error {
	if err := c.inner.Create(ctx, account); err != nil {
		return err
	}
	c.invalidate(ctx, account.Code)
	return nil
}

func (c *AccountCache) Update(ctx context.Context, account *domain.Account) error {
	if err := c.inner.Update(ctx, account); err != nil {
		return err
	}
	c.invalidate(ctx, account.Code)
	return nil
}

func (c *AccountCache) Delete(ctx context.Context, id uuid.UUID) error {
	account, lookupErr := c.inner.ByID(ctx, id)
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	if lookupErr == nil {
		c.invalidate(ctx, account.Code)
	}
	return nil
}

func (c *AccountCache) ByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return c.inner.ByID(ctx, id)
}

func (c *AccountCache) ByType(ctx context.Context, accountType domain.AccountType, includeArchived bool) ([]*domain.Account, error) {
	return c.inner.ByType(ctx, accountType, includeArchived)
}

func (c *AccountCache) ChildrenOf(ctx context.Context, parentID uuid.UUID) ([]*domain.Account, error) {
	return c.inner.ChildrenOf(ctx, parentID)
}

func (c *AccountCache) Roots(ctx context.Context, includeArchived bool) ([]*domain.Account, error) {
	return c.inner.Roots(ctx, includeArchived)
}

func (c *AccountCache) ListAll(ctx context.Context, includeArchived bool) ([]*domain.Account, error) {
	return c.inner.ListAll(ctx, includeArchived)
}

func (c *AccountCache) IsReferencedByPosting(ctx context.Context, id uuid.UUID) (bool, error) {
	return c.inner.IsReferencedByPosting(ctx, id)
}

func (c *AccountCache) store(ctx context.Context, account *domain.Account) {
	if c.client == nil {
		return
	}
	cached := cachedAccount{
		ID: account.ID, Code: account.Code, Name: account.Name, Type: account.Type,
		Currency: account.Currency, ParentID: account.ParentID, IsActive: account.IsActive,
		CreatedAt: account.CreatedAt, UpdatedAt: account.UpdatedAt,
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(account.Code), raw, accountTTL)
}

func (c *AccountCache) invalidate(ctx context.Context, code string) {
	if c.client == nil {
		return
	}
	c.client.Del(ctx, cacheKey(code))
}

func cacheKey(code string) string {
	return "finlite:account:code:" + code
}

func (c cachedAccount) toAccount() *domain.Account {
	return &domain.Account{
		ID: c.ID, Code: c.Code, Name: c.Name, Type: c.Type, Currency: c.Currency,
		ParentID: c.ParentID, IsActive: c.IsActive, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

var _ domain.AccountRepository = (*AccountCache)(nil)
