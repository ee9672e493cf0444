package repositories

import (
	"context"
	"database/sql"
	"sync"

	"finlite/internal/domain"
	"finlite/internal/infrastructure/cache"
)

// UnitOfWork opens a single serializable transaction over the SQLite
// database and hands out repositories bound to it. It mirrors the
// scoped-acquisition contract: a session commits only on an explicit
// Commit call, and anything else — an error, a panic recovered by the
// caller, or simply never calling Commit — rolls back.
type UnitOfWork struct {
	db           *sql.DB
	accountRedis cache.RedisClient
	mu           sync.Mutex
	tx           *sql.Tx
}

// NewUnitOfWork constructs a UnitOfWork over db. A nil redisClient is fine:
// the account repository it hands out then runs uncached.
func NewUnitOfWork(db *sql.DB, redisClient cache.RedisClient) *UnitOfWork {
	return &UnitOfWork{db: db, accountRedis: redisClient}
}

// Session is one open unit-of-work transaction and the repositories bound
// to it. A Session must end with exactly one call to Commit or Rollback;
// repositories obtained from it never outlive that call.
type Session struct {
	uow *UnitOfWork
	tx  *sql.Tx
	done bool

	Accounts         domain.AccountRepository
	Transactions     domain.TransactionRepository
	ImportBatches    domain.ImportBatchRepository
	StatementEntries domain.StatementEntryRepository
}

// Begin opens a new session. Nesting is not supported: a second Begin call
// while a session from this UnitOfWork is still open returns
// ErrStorageConflict.
func (u *UnitOfWork) Begin(ctx context.Context) (*Session, error) {
	u.mu.Lock()
	if u.tx != nil {
		u.mu.Unlock()
		return nil, domain.ErrStorageConflict
	}

	tx, err := u.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		u.mu.Unlock()
		return nil, err
	}
	u.tx = tx
	u.mu.Unlock()

	return &Session{
		uow:              u,
		tx:               tx,
		Accounts:         cache.NewAccountCache(NewAccountRepository(tx), u.accountRedis),
		Transactions:     NewTransactionRepository(tx),
		ImportBatches:    NewImportBatchRepository(tx),
		StatementEntries: NewStatementEntryRepository(tx),
	}, nil
}

// Commit flushes every staged write. A session that has already ended
// (committed or rolled back) returns an error rather than operating on a
// stale transaction.
func (s *Session) Commit() error {
	if s.done {
		return domain.ErrStorageConflict
	}
	s.done = true
	defer s.release()
	return s.tx.Commit()
}

// Rollback discards every staged write. Calling Rollback after Commit, or
// more than once, is a no-op.
func (s *Session) Rollback() error {
	if s.done {
		return nil
	}
	s.done = true
	defer s.release()
	return s.tx.Rollback()
}

func (s *Session) release() {
	s.uow.mu.Lock()
	s.uow.tx = nil
	s.uow.mu.Unlock()
}
